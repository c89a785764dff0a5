package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test configuration for local PostgreSQL
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "realestate_ledger"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		SSLMode:  "disable",
		PoolMin:  1,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// openTestDatabase connects to the test database or skips the test when
// PostgreSQL is not reachable.
func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestNewPostgresPool_Success(t *testing.T) {
	db := openTestDatabase(t)

	assert.NotNil(t, db.Pool)
	stats := db.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, int32(5), stats.MaxConns())
}

func TestNewPostgresPool_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping network test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Host = "invalid-host-that-does-not-exist.invalid"

	_, err := NewPostgresPool(ctx, cfg)
	assert.Error(t, err, "Expected error when connecting to invalid host")
}

func TestPing_AfterClose(t *testing.T) {
	db := openTestDatabase(t)

	db.Close()
	assert.Error(t, db.Ping(context.Background()), "Expected ping to fail after pool is closed")
}

func TestPing_Uninitialized(t *testing.T) {
	var db *Database
	assert.Error(t, db.Ping(context.Background()))

	assert.Error(t, (&Database{}).Ping(context.Background()))
}

func TestClose_MultipleCalls(t *testing.T) {
	db := openTestDatabase(t)

	// Close multiple times should not panic
	db.Close()
	db.Close()
}

func TestStats_Uninitialized(t *testing.T) {
	db := &Database{}
	assert.Nil(t, db.Stats())
}

func TestMigrate(t *testing.T) {
	db := openTestDatabase(t)

	_, err := db.Migrate()
	require.NoError(t, err)

	// A second run has nothing left to apply
	n, err := db.Migrate()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	pending, err := db.PendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrate_Uninitialized(t *testing.T) {
	db := &Database{}

	_, err := db.Migrate()
	assert.Error(t, err)

	_, err = db.PendingMigrations()
	assert.Error(t, err)
}

func TestMigrationSource_FindsEmbeddedFiles(t *testing.T) {
	migrations, err := migrationSource().FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_ledger_events.sql", migrations[0].Id)
}
