// Package filestore persists runner snapshots as one JSON file per key.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/automaton"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
	"github.com/felixgeelhaar/automaton/persist"
)

// Store writes each snapshot to <dir>/<escaped key>.json. Writes replace the
// previous file atomically.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// Open creates dir if needed and returns a store rooted there
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With().Str(xlog.FieldStore, "file").Logger(),
	}, nil
}

// Path returns the file that holds key
func (s *Store) Path(key string) string {
	name := strings.ReplaceAll(url.PathEscape(key), ":", "%3A")
	return filepath.Join(s.dir, name+".json")
}

// Save implements automaton.Store
func (s *Store) Save(ctx context.Context, key string, snap automaton.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := persist.Encode(snap)
	if err != nil {
		return err
	}
	if err := writeFile(s.Path(key), data, s.logger); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

// Load implements automaton.Store
func (s *Store) Load(ctx context.Context, key string) (automaton.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return automaton.Snapshot{}, false, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return automaton.Snapshot{}, false, nil
	}
	if err != nil {
		return automaton.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	snap, err := persist.Decode(data)
	if err != nil {
		return automaton.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete implements automaton.Store
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

var _ automaton.Store = (*Store)(nil)
