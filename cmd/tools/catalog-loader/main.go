// cmd/tools/catalog-loader/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"product-assistant/internal/common/catalog"
	"product-assistant/internal/common/config"
	"product-assistant/internal/common/database"
)

const batchSize = 500

func main() {
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	countCmd := flag.NewFlagSet("count", flag.ExitOnError)

	file := loadCmd.String("file", "", "JSON array of product payloads")
	loadCollection := loadCmd.String("collection", "", "Target collection (defaults to catalog.collection)")
	countCollection := countCmd.String("collection", "", "Collection to count (defaults to catalog.collection)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "load":
		loadCmd.Parse(os.Args[2:])
		if *file == "" {
			fmt.Println("Error: -file is required for load.")
			loadCmd.Usage()
			os.Exit(1)
		}
		n, err := load(*file, *loadCollection)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d records.\n", n)

	case "count":
		countCmd.Parse(os.Args[2:])
		n, err := count(*countCollection)
		if err != nil {
			fmt.Printf("Error counting catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d records.\n", n)

	case "help":
		fallthrough
	default:
		help()
	}
}

func open(ctx context.Context) (*config.Config, catalog.Store, *database.Clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Catalog.Backend == config.BackendMemory {
		return nil, nil, nil, fmt.Errorf("the memory backend is per-process; point catalog.backend at elasticsearch, redis or postgres")
	}

	clients, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Catalog.Backend, err)
	}
	store, err := catalog.Open(cfg, clients)
	if err != nil {
		clients.Close()
		return nil, nil, nil, err
	}
	return cfg, store, clients, nil
}

func load(path, collection string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := catalog.DecodeRecords(f)
	if err != nil {
		return 0, err
	}

	cfg, store, clients, err := open(ctx)
	if err != nil {
		return 0, err
	}
	defer clients.Close()

	if collection == "" {
		collection = cfg.Catalog.Collection
	}

	if pg, ok := store.(*catalog.PostgresStore); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			return 0, fmt.Errorf("failed to create catalog table: %w", err)
		}
	}

	writer, ok := store.(catalog.Writer)
	if !ok {
		return 0, fmt.Errorf("backend %s does not support loading", cfg.Catalog.Backend)
	}

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := writer.Put(ctx, collection, records[start:end]); err != nil {
			return start, fmt.Errorf("failed to write batch at %d: %w", start, err)
		}
	}
	return len(records), nil
}

func count(collection string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, store, clients, err := open(ctx)
	if err != nil {
		return 0, err
	}
	defer clients.Close()

	if collection == "" {
		collection = cfg.Catalog.Collection
	}

	seen := make(map[string]struct{})
	err = catalog.Walk(ctx, store, collection, cfg.Catalog.PageSize, func(p catalog.Page) error {
		for _, r := range p.Records {
			seen[r.ID] = struct{}{}
		}
		return nil
	})
	return len(seen), err
}

func help() {
	fmt.Println(`
Usage: catalog-loader <command> [flags]

Commands:
  load   Write a JSON array of products into the configured catalog backend
  count  Scroll the catalog and print the number of records
  help   Show this help message

Examples:
  catalog-loader load -file configs/catalog.sample.json
  catalog-loader count -collection fashion

The backend and connection settings come from configs/config.yaml and the environment.`)
}
