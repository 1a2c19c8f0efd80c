// Package badgerstore persists runner snapshots in an embedded Badger database.
package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/automaton"
	"github.com/felixgeelhaar/automaton/persist"
)

// Store is a Badger-backed automaton.Store
type Store struct {
	db *badger.DB
}

// Open opens or creates a database in dir
func Open(dir string) (*Store, error) {
	return open(badger.DefaultOptions(dir).WithLogger(nil))
}

// OpenInMemory opens a database that is never written to disk
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// Save implements automaton.Store
func (s *Store) Save(ctx context.Context, key string, snap automaton.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := persist.Encode(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
}

// Load implements automaton.Store
func (s *Store) Load(ctx context.Context, key string) (automaton.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return automaton.Snapshot{}, false, err
	}
	var out automaton.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			snap, err := persist.Decode(val)
			if err != nil {
				return err
			}
			out = snap
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return automaton.Snapshot{}, false, nil
	}
	if err != nil {
		return automaton.Snapshot{}, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return out, true, nil
}

// Delete implements automaton.Store
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

var _ automaton.Store = (*Store)(nil)
