package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// MaxFeeBps is 100% expressed in basis points.
const MaxFeeBps = 10000

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Platform PlatformConfig
	CORS     CORSConfig
	Storage  string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// PlatformConfig holds the ledger construction parameters.
type PlatformConfig struct {
	Owner         string
	Treasury      string
	FeeBps        int
	SweepInterval time.Duration
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// DSN builds a postgres:// connection URL with escaped credentials.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	return u.String()
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE", StorageMemory)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "realestate_ledger")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("PLATFORM_FEE_BPS", 250)
	v.SetDefault("FUNDING_SWEEP_INTERVAL", "1m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Platform: PlatformConfig{
			Owner:         v.GetString("PLATFORM_OWNER"),
			Treasury:      v.GetString("PLATFORM_TREASURY"),
			FeeBps:        v.GetInt("PLATFORM_FEE_BPS"),
			SweepInterval: v.GetDuration("FUNDING_SWEEP_INTERVAL"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Storage: strings.ToLower(v.GetString("STORAGE")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// Database settings are only checked when the postgres backend is selected.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}

	if strings.TrimSpace(c.Platform.Owner) == "" {
		return fmt.Errorf("PLATFORM_OWNER is required")
	}
	if strings.TrimSpace(c.Platform.Treasury) == "" {
		return fmt.Errorf("PLATFORM_TREASURY is required")
	}
	if c.Platform.FeeBps < 0 || c.Platform.FeeBps > MaxFeeBps {
		return fmt.Errorf("PLATFORM_FEE_BPS must be between 0 and %d", MaxFeeBps)
	}
	if c.Platform.SweepInterval <= 0 {
		return fmt.Errorf("FUNDING_SWEEP_INTERVAL must be positive")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// Validate checks the PostgreSQL connection settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
