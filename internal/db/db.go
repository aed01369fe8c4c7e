package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	Pool *pgxpool.Pool
}

func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 25
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Database{Pool: pool}, nil
}

func (d *Database) Close() {
	d.Pool.Close()
}

func (d *Database) AutoMigrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            username VARCHAR(50) PRIMARY KEY,
            password VARCHAR(255) NOT NULL,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS offers (
            id TEXT PRIMARY KEY,
            have_name TEXT NOT NULL,
            have_quantity TEXT NOT NULL,
            have_category TEXT NOT NULL,
            have_image TEXT,
            have_owner TEXT NOT NULL,
            want_name TEXT NOT NULL,
            want_quantity TEXT NOT NULL,
            want_category TEXT NOT NULL,
            want_image TEXT,
            want_owner TEXT,
            location TEXT NOT NULL,
            message TEXT,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            matched_with TEXT,
            completion_code TEXT,
            confirmed_by TEXT,
            declined_with TEXT[] NOT NULL DEFAULT '{}'
        )`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
            id SERIAL PRIMARY KEY,
            offer_id TEXT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
            sender TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
        )`,

		`CREATE INDEX IF NOT EXISTS idx_offers_match
            ON offers (want_name, have_name) WHERE status = 'pending'`,

		`CREATE INDEX IF NOT EXISTS idx_chat_messages_offer
            ON chat_messages (offer_id, created_at)`,
	}

	for _, query := range queries {
		_, err := d.Pool.Exec(ctx, query)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
