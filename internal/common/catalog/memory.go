package catalog

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// MemoryStore keeps collections in process. Cursors are record offsets.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

// LoadFile seeds collection from a JSON file of payload objects.
func (s *MemoryStore) LoadFile(collection, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	records, err := DecodeRecords(f)
	if err != nil {
		return err
	}
	return s.Put(context.Background(), collection, records)
}

// Put appends records. The memory store keys each record by its position in
// the collection, so payloads sharing an "id" remain separate records.
func (s *MemoryStore) Put(_ context.Context, collection string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.collections[collection]
	for _, r := range records {
		stored = append(stored, Record{ID: strconv.Itoa(len(stored)), Payload: r.Payload})
	}
	s.collections[collection] = stored
	return nil
}

func (s *MemoryStore) Scroll(ctx context.Context, collection string, limit int, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		return Page{}, fmt.Errorf("limit must be positive, got %d", limit)
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return Page{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.collections[collection]
	if offset >= len(all) {
		return Page{}, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	page := Page{Records: append([]Record(nil), all[offset:end]...)}
	if end < len(all) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
