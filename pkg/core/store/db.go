// Package store persists valuation runs to PostgreSQL. The engine has no
// dependency on persistence succeeding; callers record results after the
// fact and the API keeps serving when the pool is absent.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the connection pool from a database URL. Safe to
// call more than once; only the first call connects.
func InitDB(ctx context.Context, databaseURL string) error {
	var err error
	once.Do(func() {
		if databaseURL == "" {
			err = fmt.Errorf("database URL not configured")
			return
		}

		config, parseErr := pgxpool.ParseConfig(databaseURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the database connection pool, nil before InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
