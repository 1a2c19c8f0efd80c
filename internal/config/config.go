// Package config loads the CLI configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends accepted by StoreBackend.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreBadger = "badger"
)

var (
	ErrParsingConfig  = errors.New("failed to parse config")
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Config is the runtime configuration of the automaton CLI.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"false"`

	StoreBackend string        `env:"STORE_BACKEND" envDefault:"memory"`
	StoreTTL     time.Duration `env:"STORE_TTL" envDefault:"0s"`
	FileDir      string        `env:"FILE_DIR" envDefault:".automaton"`
	BadgerDir    string        `env:"BADGER_DIR" envDefault:".automaton/badger"`
	RedisAddr    string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB      int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass    string        `env:"REDIS_PASSWORD"`

	Runners     int           `env:"RUNNERS" envDefault:"1"`
	SettleDelay time.Duration `env:"SETTLE_DELAY" envDefault:"50ms"`
}

// Load parses the environment, honouring the AUTOMATON_ prefix.
func Load() (Config, error) {
	return load(env.Options{Prefix: "AUTOMATON_"})
}

// LoadFrom parses cfg from an explicit variable set, used in tests.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Prefix: "AUTOMATON_", Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFile, StoreRedis, StoreBadger:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}
	if c.Runners < 1 {
		return fmt.Errorf("runners must be positive, got %d", c.Runners)
	}
	return nil
}
