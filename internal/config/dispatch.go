package config

import (
	"time"

	"godeliver/internal/utils"
)

type DispatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Enabled  bool          `yaml:"enabled"`
}

func loadDispatchConfig() *DispatchConfig {
	return &DispatchConfig{
		Interval: getEnvAsDuration("DISPATCH_INTERVAL", utils.DefaultDispatchInterval),
		Enabled:  getEnvAsBool("DISPATCH_ENABLED", true),
	}
}
