// Package redisstore persists runner snapshots in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/automaton"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
	"github.com/felixgeelhaar/automaton/persist"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string        // Redis server address (host:port)
	Password string        // Redis password (optional)
	DB       int           // Redis database number
	TTL      time.Duration // Snapshot expiry; zero keeps snapshots forever
}

// Store is a Redis-backed automaton.Store. Snapshots are stored as JSON
// strings under the runner's state key.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis snapshot store")

	return New(client, cfg.TTL, logger), nil
}

// New wraps an existing client
func New(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str(xlog.FieldStore, "redis").Logger(),
	}
}

// Save implements automaton.Store
func (s *Store) Save(ctx context.Context, key string, snap automaton.Snapshot) error {
	data, err := persist.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.logger.Debug().Str(xlog.FieldKey, key).Msg("snapshot saved")
	return nil
}

// Load implements automaton.Store
func (s *Store) Load(ctx context.Context, key string) (automaton.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return automaton.Snapshot{}, false, nil
	}
	if err != nil {
		return automaton.Snapshot{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	snap, err := persist.Decode(data)
	if err != nil {
		return automaton.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete implements automaton.Store
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

var _ automaton.Store = (*Store)(nil)
