// Package catalog provides the product catalog stores scrolled by the search
// engine.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Record is one catalog entry. The payload is owned by the store and must be
// treated as read-only.
type Record struct {
	ID      string                 `json:"id"`
	Payload map[string]interface{} `json:"payload"`
}

// Page is one scroll step. An empty NextCursor ends pagination.
type Page struct {
	Records    []Record
	NextCursor string
}

// Store is the paginated read side of a catalog backend. An empty cursor
// starts a new scroll.
type Store interface {
	Scroll(ctx context.Context, collection string, limit int, cursor string) (Page, error)
	Ping(ctx context.Context) error
}

// Writer is implemented by stores that can be seeded by the loader.
type Writer interface {
	Put(ctx context.Context, collection string, records []Record) error
}

// Walk scrolls the whole collection, calling fn for every page until the
// store returns an empty cursor.
func Walk(ctx context.Context, store Store, collection string, limit int, fn func(Page) error) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := store.Scroll(ctx, collection, limit, cursor)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

// DecodeRecords reads a JSON array of payload objects. The record ID comes
// from the payload's "id" field when present, otherwise from the position.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var payloads []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("decode catalog records: %w", err)
	}

	records := make([]Record, 0, len(payloads))
	for i, p := range payloads {
		id := strconv.Itoa(i)
		if v, ok := p["id"]; ok && v != nil {
			id = fmt.Sprint(v)
		}
		records = append(records, Record{ID: id, Payload: p})
	}
	return records, nil
}
