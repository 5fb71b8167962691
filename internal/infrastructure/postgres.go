package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}
	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return client, nil
}

var postgresSchema = []struct {
	name string
	stmt string
}{
	{"subscribers", `
		CREATE TABLE IF NOT EXISTS subscribers (
			phone VARCHAR(64) PRIMARY KEY,
			language VARCHAR(8) NOT NULL DEFAULT 'en'
		);`},
	{"broadcasts", `
		CREATE TABLE IF NOT EXISTS broadcasts (
			id SERIAL PRIMARY KEY,
			message TEXT NOT NULL,
			channel VARCHAR(20) NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) DEFAULT 'admin',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`},
}

// Migrate creates the subscriber, broadcast and admin tables.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	for _, table := range postgresSchema {
		if _, err := p.Pool.Exec(ctx, table.stmt); err != nil {
			return fmt.Errorf("create %s table: %w", table.name, err)
		}
	}
	log.WithField("tables", len(postgresSchema)).Info("postgres schema ready")
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
