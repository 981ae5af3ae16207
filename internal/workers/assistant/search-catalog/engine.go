package searchcatalog

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"product-assistant/internal/common/catalog"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"
	"product-assistant/internal/common/metrics"
	"product-assistant/internal/models"
)

const (
	DefaultPageSize   = 1000
	DefaultSampleSize = 10
)

// Result is what a search returns. Records is never nil.
type Result struct {
	Records []map[string]interface{}
	Mode    models.SearchMode
	Total   int
}

// Engine scrolls a whole collection and then filters or samples it.
// It is safe for concurrent use; each search keeps its own buffer.
type Engine struct {
	store      catalog.Store
	pageSize   int
	sampleSize int
	logger     logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithSampleSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sampleSize = n
		}
	}
}

// WithRandSource fixes the sampling source, mostly for tests.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

func NewEngine(store catalog.Store, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		pageSize:   DefaultPageSize,
		sampleSize: DefaultSampleSize,
		logger:     log,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search never fails. A store error is logged and yields an empty result in
// degraded mode.
func (e *Engine) Search(ctx context.Context, collection string, spec models.FilterSpec) Result {
	all, err := e.fetchAll(ctx, collection)
	if err != nil {
		degraded := apperrors.NewSearchDegradedError(collection, err)
		e.logger.Error("catalog search failed, returning no results", map[string]interface{}{
			"collection": collection,
			"code":       string(degraded.Code),
			"error":      degraded,
		})
		metrics.SearchDegraded.Inc()
		return e.result(models.SearchModeDegraded, nil, 0)
	}

	if len(spec) == 0 {
		return e.result(models.SearchModeSampled, e.sample(all), len(all))
	}

	var matched []map[string]interface{}
	for _, r := range all {
		if spec.Matches(r.Payload) {
			matched = append(matched, r.Payload)
		}
	}
	if len(matched) > 0 {
		return e.result(models.SearchModeFiltered, matched, len(all))
	}

	e.logger.Info("no catalog record matched filters, sampling", map[string]interface{}{
		"collection": collection,
		"filters":    len(spec),
	})
	return e.result(models.SearchModeFallback, e.sample(all), len(all))
}

// fetchAll drains the scroll. A record ID is the store's own key, so the same
// non-empty ID seen on two pages is one record repeated by the scroll (Redis
// SCAN can do this) and is kept once.
func (e *Engine) fetchAll(ctx context.Context, collection string) ([]catalog.Record, error) {
	var all []catalog.Record
	seen := make(map[string]struct{})

	err := catalog.Walk(ctx, e.store, collection, e.pageSize, func(page catalog.Page) error {
		metrics.CatalogPagesScrolled.WithLabelValues(collection).Inc()
		for _, r := range page.Records {
			if r.ID != "" {
				if _, dup := seen[r.ID]; dup {
					continue
				}
				seen[r.ID] = struct{}{}
			}
			all = append(all, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// sample picks min(sampleSize, len(records)) records uniformly without
// replacement.
func (e *Engine) sample(records []catalog.Record) []map[string]interface{} {
	k := e.sampleSize
	if len(records) < k {
		k = len(records)
	}

	e.mu.Lock()
	perm := e.rng.Perm(len(records))
	e.mu.Unlock()

	out := make([]map[string]interface{}, 0, k)
	for _, i := range perm[:k] {
		out = append(out, records[i].Payload)
	}
	return out
}

func (e *Engine) result(mode models.SearchMode, records []map[string]interface{}, total int) Result {
	metrics.SearchesByMode.WithLabelValues(string(mode)).Inc()
	if records == nil {
		records = []map[string]interface{}{}
	}
	return Result{Records: records, Mode: mode, Total: total}
}
