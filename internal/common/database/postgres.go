package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"product-assistant/internal/common/config"

	"github.com/lib/pq"
)

// PostgresClient is the connection pool behind the postgres catalog backend.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres builds the pool through a pq connector so a malformed DSN is
// reported here rather than on first query. No connection is made yet.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	if cfg.Host == "" || cfg.Database == "" {
		return nil, fmt.Errorf("postgres host and database are required")
	}

	connector, err := pq.NewConnector(cfg.GetDSN() + " application_name=product-assistant")
	if err != nil {
		return nil, fmt.Errorf("invalid postgres configuration: %w", err)
	}

	db := sql.OpenDB(connector)
	// A search holds one connection for the whole keyset scroll.
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
