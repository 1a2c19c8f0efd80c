package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/automaton"
	"github.com/felixgeelhaar/automaton/internal/config"
	"github.com/felixgeelhaar/automaton/persist"
	"github.com/felixgeelhaar/automaton/persist/badgerstore"
	"github.com/felixgeelhaar/automaton/persist/filestore"
	"github.com/felixgeelhaar/automaton/persist/redisstore"
)

// openStore returns the configured snapshot store and its close function
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (automaton.Store, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.StoreBackend {
	case config.StoreMemory:
		return persist.NewMemoryStore(), noClose, nil
	case config.StoreFile:
		s, err := filestore.Open(cfg.FileDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	case config.StoreRedis:
		s, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			TTL:      cfg.StoreTTL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreBadger:
		s, err := badgerstore.Open(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StoreBackend)
	}
}
