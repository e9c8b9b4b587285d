// Package config loads the server configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env"
)

// Config is everything the server reads from the environment. A .env file
// loaded before parsing works the same way.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/sixmans.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// Default queue created at first startup when the store holds none.
	DefaultQueueName     string `env:"DEFAULT_QUEUE_NAME" envDefault:"6mans"`
	DefaultQueueCapacity int    `env:"DEFAULT_QUEUE_CAPACITY" envDefault:"6"`
	DefaultPointsPerPlay int    `env:"POINTS_PER_PLAY" envDefault:"5"`
	DefaultPointsPerWin  int    `env:"POINTS_PER_WIN" envDefault:"10"`

	QueueIdleTimeout time.Duration `env:"QUEUE_IDLE_TIMEOUT" envDefault:"4h"`
	SelectionTimeout time.Duration `env:"SELECTION_TIMEOUT" envDefault:"5m"`
	PickTimeout      time.Duration `env:"PICK_TIMEOUT" envDefault:"2m"`
	ReportTimeout    time.Duration `env:"REPORT_TIMEOUT" envDefault:"5m"`
	CancelTimeout    time.Duration `env:"CANCEL_TIMEOUT" envDefault:"2m"`
	TeardownDelay    time.Duration `env:"TEARDOWN_DELAY" envDefault:"30s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
