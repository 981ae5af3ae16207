package database

import (
	"context"
	"fmt"

	"product-assistant/internal/common/config"
	apperrors "product-assistant/internal/common/errors"
)

// Clients holds the connections opened for the configured catalog backend.
// Only the field matching cfg.Catalog.Backend is populated.
type Clients struct {
	Elasticsearch *ElasticsearchClient
	Redis         *RedisClient
	Postgres      *PostgresClient
}

// Connect opens the connection required by the selected catalog backend.
func Connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	clients := &Clients{}

	switch cfg.Catalog.Backend {
	case config.BackendElasticsearch:
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := es.Ping(ctx); err != nil {
			return nil, apperrors.NewCatalogUnavailableError(config.BackendElasticsearch, err)
		}
		clients.Elasticsearch = es
	case config.BackendRedis:
		rdb, err := NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, apperrors.NewCatalogUnavailableError(config.BackendRedis, err)
		}
		clients.Redis = rdb
	case config.BackendPostgres:
		pg, err := NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, apperrors.NewCatalogUnavailableError(config.BackendPostgres, err)
		}
		clients.Postgres = pg
	case config.BackendMemory:
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}

	return clients, nil
}

// Close releases every open connection.
func (c *Clients) Close() error {
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Postgres != nil {
		if err := c.Postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
