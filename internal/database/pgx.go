package database

import (
	"context"
	"fmt"

	"formstore/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connection(ctx context.Context, src Source) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(src.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	logger.Info("Connected to PostgreSQL!")
	return pool, nil
}
