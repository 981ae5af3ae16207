package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a JSON string under
// catalog:<collection>:<id> and pages through them with SCAN. SCAN may return
// a key more than once, so callers that need exactly-once must dedup by ID.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func keyPrefix(collection string) string {
	return "catalog:" + collection + ":"
}

func (s *RedisStore) Scroll(ctx context.Context, collection string, limit int, cursor string) (Page, error) {
	var start uint64
	if cursor != "" {
		n, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return Page{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		start = n
	}

	prefix := keyPrefix(collection)
	keys, next, err := s.client.Scan(ctx, start, prefix+"*", int64(limit)).Result()
	if err != nil {
		return Page{}, fmt.Errorf("redis scan: %w", err)
	}

	page := Page{}
	if next != 0 {
		page.NextCursor = strconv.FormatUint(next, 10)
	}
	if len(keys) == 0 {
		return page, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Page{}, fmt.Errorf("redis mget: %w", err)
	}

	page.Records = make([]Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return Page{}, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		page.Records = append(page.Records, Record{
			ID:      strings.TrimPrefix(keys[i], prefix),
			Payload: payload,
		})
	}
	return page, nil
}

func (s *RedisStore) Put(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	prefix := keyPrefix(collection)
	pipe := s.client.Pipeline()
	for _, r := range records {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		pipe.Set(ctx, prefix+r.ID, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
