package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"graca-pdv/internal/config"
	"graca-pdv/internal/database"
	"graca-pdv/internal/logger"
	"graca-pdv/internal/server"
)

// shutdownGrace bounds how long in-flight checkouts get to finish
const shutdownGrace = 30 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, logger.FromConfig(cfg.Logger)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Point of sale API stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting point of sale API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("store", cfg.Store.Name),
	)

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if health := db.Health(); health["status"] != "up" {
		db.Close()
		return fmt.Errorf("database is not reachable: %s", health["error"])
	}
	if err := database.EnsureSchema(db, log); err != nil {
		db.Close()
		return err
	}

	srv := server.NewServer(cfg, log, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		srv.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// open carts give their stock back before the store closes
	if err := srv.Close(); err != nil {
		log.Error("Error closing server resources", zap.Error(err))
	}

	log.Info("Graceful shutdown complete")
	return nil
}
