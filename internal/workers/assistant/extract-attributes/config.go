package extractattributes

import (
	"fmt"
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
		Timeout:       60 * time.Second,
	}
}

// FromAppConfig reads the workers.extract-attributes section. The job
// timeout never drops below the model timeout.
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

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
