// Package storetest checks automaton.Store implementations against the
// behavior runners rely on.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/automaton"
)

// Run exercises store. It uses keys prefixed with "storetest:".
func Run(t *testing.T, store automaton.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		_, ok, err := store.Load(ctx, "storetest:missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save and load", func(t *testing.T) {
		want := automaton.Snapshot{State: 3, Started: true, Paused: false}
		require.NoError(t, store.Save(ctx, "storetest:automaton:door:7", want))

		got, ok, err := store.Load(ctx, "storetest:automaton:door:7")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		key := "storetest:overwrite"
		require.NoError(t, store.Save(ctx, key, automaton.Snapshot{State: 1}))
		require.NoError(t, store.Save(ctx, key, automaton.Snapshot{State: 2, Paused: true}))

		got, ok, err := store.Load(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, automaton.Snapshot{State: 2, Paused: true}, got)
	})

	t.Run("delete", func(t *testing.T) {
		key := "storetest:delete"
		require.NoError(t, store.Save(ctx, key, automaton.Snapshot{State: 1}))
		require.NoError(t, store.Delete(ctx, key))

		_, ok, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("runner round trip", func(t *testing.T) {
		b := automaton.NewBuilder[string]("storetest")
		require.NoError(t, b.AddState(1, "idle", automaton.AsInitial()))
		require.NoError(t, b.AddState(2, "busy"))
		b.AddTransition(1, 2, "work")
		a, err := b.Build()
		require.NoError(t, err)

		src, err := automaton.NewRunner(a, automaton.WithName("storetest"), automaton.WithInstanceID(42))
		require.NoError(t, err)
		saved := automaton.Snapshot{State: 2, Started: true, Paused: true}
		require.NoError(t, src.Restore(saved))
		require.NoError(t, src.SaveInstanceState(ctx, store))

		dst, err := automaton.NewRunner(a, automaton.WithName("storetest"), automaton.WithInstanceID(42))
		require.NoError(t, err)
		ok, err := dst.RestoreInstanceState(ctx, store)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, automaton.StateID(2), dst.CurrentState())
		assert.True(t, dst.IsPaused())
		assert.Equal(t, saved, dst.Snapshot())

		require.NoError(t, store.Delete(ctx, dst.StateKey()))
	})
}
