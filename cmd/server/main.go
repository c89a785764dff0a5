package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/config"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/database"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/handlers"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/ledger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/logger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/middleware"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/repository"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A .env file is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting real-estate ledger API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"storage":     cfg.Storage,
	})

	ctx := context.Background()

	// Select the journal backend. db stays nil for in-memory storage.
	var (
		db      *database.Database
		journal repository.JournalRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		applied, err := db.Migrate()
		if err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Database connection established", map[string]interface{}{
			"host":               cfg.Database.Host,
			"database":           cfg.Database.Name,
			"pool_max":           cfg.Database.PoolMax,
			"migrations_applied": applied,
		})
		journal = repository.NewPostgresJournal(db)
	default:
		log.Warn("Using in-memory journal; ledger state is lost on restart", nil)
		journal = repository.NewMemoryJournal()
	}

	feeBps := int64(cfg.Platform.FeeBps)
	l, err := ledger.New(ctx, ledger.Options{
		Journal:  journal,
		Owner:    models.ParseAccount(cfg.Platform.Owner),
		Treasury: models.ParseAccount(cfg.Platform.Treasury),
		FeeBps:   &feeBps,
	})
	if err != nil {
		log.Fatal("Failed to initialize ledger", err, nil)
	}
	log.Info("Ledger replayed", map[string]interface{}{
		"sequence":   l.Sequence(),
		"properties": l.PropertyCount(),
	})

	ledgerService := services.NewLedgerService(l, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Account -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Account())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes. A nil *Database must not become a
	// non-nil Pinger.
	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	healthHandler := handlers.NewHealthHandler(pinger, cfg.Server.Env, cfg.Storage)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", healthHandler.Info)
	handlers.RegisterLedgerRoutes(v1, ledgerService)

	// Expire overdue properties in the background
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		services.RunExpirySweeper(sweepCtx, ledgerService, cfg.Platform.SweepInterval, log)
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	stopSweeper()
	<-sweeperDone

	log.Info("Server exited", nil)
}
