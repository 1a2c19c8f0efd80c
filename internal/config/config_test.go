package config_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/automaton/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 1, cfg.Runners)
	assert.Equal(t, 50*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"AUTOMATON_STORE_BACKEND": "redis",
		"AUTOMATON_REDIS_ADDR":    "cache:6380",
		"AUTOMATON_REDIS_DB":      "3",
		"AUTOMATON_STORE_TTL":     "1m",
		"AUTOMATON_RUNNERS":       "4",
	})
	require.NoError(t, err)

	assert.Equal(t, config.StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.StoreTTL)
	assert.Equal(t, 4, cfg.Runners)
}

func TestLoadFrom_UnknownBackend(t *testing.T) {
	_, err := config.LoadFrom(map[string]string{"AUTOMATON_STORE_BACKEND": "tape"})
	require.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestLoadFrom_InvalidValue(t *testing.T) {
	_, err := config.LoadFrom(map[string]string{"AUTOMATON_RUNNERS": "many"})
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestValidate_Runners(t *testing.T) {
	cfg := config.Config{StoreBackend: config.StoreMemory, Runners: 0}
	assert.Error(t, cfg.Validate())
}
