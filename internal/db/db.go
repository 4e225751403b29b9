package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edkuperman/techboard/internal/config"
)

// New builds a bounded connection pool and verifies connectivity.
// Bounds mirror the deployed service: 1 idle connection kept warm,
// at most 20 concurrent connections.
func New(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	pc.MinConns = 1
	pc.MaxConns = 20
	pc.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// MustPool is New with a fatal exit on failure, for command entry points.
func MustPool(ctx context.Context, cfg config.Config) *pgxpool.Pool {
	pool, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	return pool
}

// Bootstrap creates every table the service uses. All statements use
// CREATE TABLE IF NOT EXISTS, so repeated startups are safe.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS test_db (
			id SERIAL PRIMARY KEY,
			sequence_number INTEGER NOT NULL,
			run_timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS companies (
			id SERIAL PRIMARY KEY,
			organization_name VARCHAR(500),
			website TEXT,
			industries TEXT,
			headquarters_location VARCHAR(500),
			cb_rank_company INTEGER,
			founded_date DATE,
			description TEXT,
			total_funding_amount_usd NUMERIC,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			id SERIAL PRIMARY KEY,
			date DATE NOT NULL,
			linking_url TEXT NOT NULL,
			url TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	log.Println("database tables initialized")
	return nil
}
