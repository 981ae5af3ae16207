package searchcatalog

import (
	"fmt"
	"time"

	"product-assistant/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	Collection    string
	PageSize      int
	SampleSize    int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       2 * time.Minute,
		PageSize:      DefaultPageSize,
		SampleSize:    DefaultSampleSize,
	}
}

// FromAppConfig combines workers.search-catalog with the catalog section.
func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok {
		c.Enabled = w.Enabled
		c.MaxJobsActive = w.MaxJobsActive
		c.Timeout = time.Duration(w.Timeout) * time.Millisecond
	}
	c.Collection = cfg.Catalog.Collection
	if cfg.Catalog.PageSize > 0 {
		c.PageSize = cfg.Catalog.PageSize
	}
	if cfg.Catalog.SampleSize > 0 {
		c.SampleSize = cfg.Catalog.SampleSize
	}
	return c
}

func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive")
	}
	return nil
}
