package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"formstore/internal/config"
	"formstore/internal/database"
	"formstore/internal/logger"
	"formstore/internal/router"
	"formstore/internal/store"

	"go.uber.org/zap"
)

// @title        Form Store API
// @version      1.0
// @description  Stores JSON questionnaire forms keyed by uuid.
// @host         localhost:3005
// @BasePath     /

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Filename: cfg.LogFile}); err != nil {
		logger.Fatal("failed to init logger", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Initialize db pool")
	s, closeStore, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open store", err)
	}
	defer closeStore()

	e := router.New(cfg, s)

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Addr))
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}

func openStore(ctx context.Context, rawURL string) (store.Store, func(), error) {
	src, err := database.ParseURL(rawURL)
	if err != nil {
		return nil, nil, err
	}

	switch src.Driver {
	case database.DriverPostgres:
		if err := database.MigratePostgres(src); err != nil {
			return nil, nil, err
		}
		pool, err := database.Connection(ctx, src)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	default:
		db, err := database.OpenSQLite(src)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Connected to SQLite", zap.String("path", src.DSN))
		return store.NewSQLiteStore(db), func() { db.Close() }, nil
	}
}
