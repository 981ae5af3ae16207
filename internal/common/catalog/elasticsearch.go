package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const matchAllQuery = `{"query":{"match_all":{}}}`

// ElasticsearchStore scrolls an index with the scroll API. The scroll id is
// the cursor; a short page ends the scroll and releases its context.
type ElasticsearchStore struct {
	client    *elasticsearch.Client
	keepAlive time.Duration
}

func NewElasticsearchStore(client *elasticsearch.Client, keepAlive time.Duration) *ElasticsearchStore {
	if keepAlive <= 0 {
		keepAlive = time.Minute
	}
	return &ElasticsearchStore{client: client, keepAlive: keepAlive}
}

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchStore) Scroll(ctx context.Context, collection string, limit int, cursor string) (Page, error) {
	var (
		res *esapi.Response
		err error
	)

	if cursor == "" {
		res, err = s.client.Search(
			s.client.Search.WithContext(ctx),
			s.client.Search.WithIndex(collection),
			s.client.Search.WithScroll(s.keepAlive),
			s.client.Search.WithSize(limit),
			s.client.Search.WithSort("_doc"),
			s.client.Search.WithBody(strings.NewReader(matchAllQuery)),
		)
	} else {
		res, err = s.client.Scroll(
			s.client.Scroll.WithContext(ctx),
			s.client.Scroll.WithScrollID(cursor),
			s.client.Scroll.WithScroll(s.keepAlive),
		)
	}
	if err != nil {
		return Page{}, fmt.Errorf("elasticsearch scroll: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return Page{}, fmt.Errorf("elasticsearch scroll failed: %s", res.Status())
	}

	var sr scrollResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return Page{}, fmt.Errorf("decode scroll response: %w", err)
	}

	page := Page{Records: make([]Record, 0, len(sr.Hits.Hits))}
	for _, hit := range sr.Hits.Hits {
		page.Records = append(page.Records, Record{ID: hit.ID, Payload: hit.Source})
	}

	if len(sr.Hits.Hits) < limit || sr.ScrollID == "" {
		s.clearScroll(ctx, sr.ScrollID)
		return page, nil
	}

	page.NextCursor = sr.ScrollID
	return page, nil
}

func (s *ElasticsearchStore) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	res, err := s.client.ClearScroll(
		s.client.ClearScroll.WithContext(ctx),
		s.client.ClearScroll.WithScrollID(scrollID),
	)
	if err == nil {
		res.Body.Close()
	}
}

// Put bulk-indexes records, refreshing so they are visible to the next scroll.
func (s *ElasticsearchStore) Put(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, r := range records {
		meta, _ := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_index": collection, "_id": r.ID},
		})
		doc, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(
		&buf,
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk failed: %s", res.Status())
	}

	var br struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if br.Errors {
		return fmt.Errorf("elasticsearch bulk reported item errors")
	}
	return nil
}

func (s *ElasticsearchStore) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
