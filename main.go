package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/fishduel/config"
	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/persistence"
	"github.com/wfunc/fishduel/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger with defaults until the configuration is known
	if err := logger.Init("info", "json"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		logger.Log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Optional match journal database
	var db persistence.Database
	if cfg.Database.Enabled {
		db, err = persistence.Open(cfg.Database.Driver, cfg.Database.DSN())
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Infow("Database connection successful.", "driver", cfg.Database.Driver)
	}

	gameServer, err := server.NewGameServer(cfg, db)
	if err != nil {
		logger.Log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameServer.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Shutdown error: %v", err)
	}
}
