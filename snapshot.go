package automaton

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/automaton/internal/ir"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
)

// Snapshot is the persisted position of a runner
type Snapshot struct {
	State   StateID `json:"state"`
	Started bool    `json:"started"`
	Paused  bool    `json:"paused"`
}

// Store persists snapshots by key. Load reports false when the key is absent.
type Store interface {
	Save(ctx context.Context, key string, s Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, bool, error)
	Delete(ctx context.Context, key string) error
}

// StateKey returns the key under which the runner's snapshot is stored:
// "automaton:<name>:<instanceID>".
func (r *Runner[K]) StateKey() string {
	return fmt.Sprintf("automaton:%s:%d", r.name, r.instanceID)
}

// Snapshot captures the current position and lifecycle flags
func (r *Runner[K]) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		State:   r.CurrentState(),
		Started: r.started,
		Paused:  r.paused,
	}
}

// Restore repositions a runner that has no worker attached and reinstates
// the saved lifecycle flags, so Snapshot afterwards returns s. A snapshot
// taken while running resumes on a fresh worker; a paused one waits for
// Start or Restart. The enter action of the restored state is not re-run.
func (r *Runner[K]) Restore(s Snapshot) error {
	if r.graph.GetState(s.State) == nil {
		errs := &ValidationError{}
		errs.AddIssue(ir.ErrCodeUnknownState, fmt.Sprintf("state %d not found", s.State))
		return errs
	}

	r.mu.Lock()
	if r.sched != nil {
		r.mu.Unlock()
		return ErrRunnerActive
	}
	r.current.Store(int64(s.State))
	r.started = s.Started
	r.paused = s.Paused || !s.Started
	if r.started && !r.paused {
		r.attachLocked()
	}
	r.logger.Debug().
		Str(xlog.FieldState, r.CurrentStateName()).
		Bool("started", r.started).
		Bool("paused", r.paused).
		Msg("runner restored")
	r.mu.Unlock()

	r.syncSource()
	return nil
}

// SaveInstanceState writes the runner's snapshot to store under StateKey
func (r *Runner[K]) SaveInstanceState(ctx context.Context, store Store) error {
	if store == nil {
		return ErrNilStore
	}
	key := r.StateKey()
	if err := store.Save(ctx, key, r.Snapshot()); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// RestoreInstanceState loads the runner's snapshot from store. It reports
// false, leaving the runner untouched, when nothing was saved.
func (r *Runner[K]) RestoreInstanceState(ctx context.Context, store Store) (bool, error) {
	if store == nil {
		return false, ErrNilStore
	}
	key := r.StateKey()
	s, ok, err := store.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := r.Restore(s); err != nil {
		return false, err
	}
	return true, nil
}
