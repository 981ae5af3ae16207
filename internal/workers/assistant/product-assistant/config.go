package productassistant

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
		MaxJobsActive: 5,
		Timeout:       3 * time.Minute,
	}
}

// FromAppConfig reads workers.product-assistant. The run covers a model call
// and a full catalog scroll, so the timeout never drops below the model's.
func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok {
		c.Enabled = w.Enabled
		c.MaxJobsActive = w.MaxJobsActive
		c.Timeout = time.Duration(w.Timeout) * time.Millisecond
	}
	if model := time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond; model > c.Timeout {
		c.Timeout = model
	}
	return c
}
