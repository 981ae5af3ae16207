package catalog

import (
	"fmt"
	"time"

	"product-assistant/internal/common/config"
	"product-assistant/internal/common/database"
)

// Open returns the store for the configured backend using the connections in
// clients. The memory backend is seeded from catalog.seed_file when set.
func Open(cfg *config.Config, clients *database.Clients) (Store, error) {
	switch cfg.Catalog.Backend {
	case config.BackendElasticsearch:
		if clients == nil || clients.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch client not connected")
		}
		keepAlive := time.Duration(cfg.Catalog.ScrollKeepAlive) * time.Millisecond
		return NewElasticsearchStore(clients.Elasticsearch.Client, keepAlive), nil
	case config.BackendRedis:
		if clients == nil || clients.Redis == nil {
			return nil, fmt.Errorf("redis client not connected")
		}
		return NewRedisStore(clients.Redis.Client), nil
	case config.BackendPostgres:
		if clients == nil || clients.Postgres == nil {
			return nil, fmt.Errorf("postgres client not connected")
		}
		return NewPostgresStore(clients.Postgres.DB), nil
	case config.BackendMemory:
		store := NewMemoryStore()
		if cfg.Catalog.SeedFile != "" {
			if err := store.LoadFile(cfg.Catalog.Collection, cfg.Catalog.SeedFile); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}
