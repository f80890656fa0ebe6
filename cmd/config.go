package cmd

import (
	"fmt"
	"time"

	"careload/internal/engine"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// loadSettings builds the load parameters from config, already overridden by
// any bound flags (flag > config > default).
func loadSettings() engine.LoadConfig {
	return engine.LoadConfig{
		BatchSize:          viper.GetInt("settings.batch_size"),
		MaxRetries:         viper.GetInt("settings.max_retries"),
		RetryDelay:         time.Duration(viper.GetInt("settings.retry_delay_seconds")) * time.Second,
		TruncateBeforeLoad: viper.GetBool("settings.truncate"),
		Parallelism:        viper.GetInt("settings.parallelism"),
	}
}

func init() {
	viper.SetDefault("settings.batch_size", 1000)
	viper.SetDefault("settings.max_retries", 3)
	viper.SetDefault("settings.retry_delay_seconds", 5)
	viper.SetDefault("settings.truncate", false)
	viper.SetDefault("settings.parallelism", 1)
	viper.SetDefault("settings.source_dir", "./data")
}
