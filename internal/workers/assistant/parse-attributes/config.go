package parseattributes

import (
	"time"

	"product-assistant/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       5 * time.Second,
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok {
		c.Enabled = w.Enabled
		c.MaxJobsActive = w.MaxJobsActive
		c.Timeout = time.Duration(w.Timeout) * time.Millisecond
	}
	return c
}
