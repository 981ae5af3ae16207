package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS catalog_items (
	collection TEXT  NOT NULL,
	id         TEXT  NOT NULL,
	payload    JSONB NOT NULL,
	PRIMARY KEY (collection, id)
)`

	scrollSQL = `SELECT id, payload FROM catalog_items
WHERE collection = $1 AND id > $2
ORDER BY id
LIMIT $3`

	upsertSQL = `INSERT INTO catalog_items (collection, id, payload)
VALUES ($1, $2, $3)
ON CONFLICT (collection, id) DO UPDATE SET payload = EXCLUDED.payload`
)

// PostgresStore pages catalog_items by primary key. The cursor is the last id
// of a full page.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the catalog table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create catalog_items: %w", err)
	}
	return nil
}

func (s *PostgresStore) Scroll(ctx context.Context, collection string, limit int, cursor string) (Page, error) {
	rows, err := s.db.QueryContext(ctx, scrollSQL, collection, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("query catalog_items: %w", err)
	}
	defer rows.Close()

	page := Page{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return Page{}, fmt.Errorf("scan catalog row: %w", err)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Page{}, fmt.Errorf("decode payload %s: %w", id, err)
		}
		page.Records = append(page.Records, Record{ID: id, Payload: payload})
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate catalog rows: %w", err)
	}

	if len(page.Records) == limit {
		page.NextCursor = page.Records[len(page.Records)-1].ID
	}
	return page, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, r.ID, data); err != nil {
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
