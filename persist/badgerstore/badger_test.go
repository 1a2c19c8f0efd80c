package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/automaton"
	"github.com/felixgeelhaar/automaton/persist/storetest"
)

func TestStore_InMemory(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	storetest.Run(t, store)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "automaton:door:1", automaton.Snapshot{State: 4, Started: true}))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.Load(ctx, "automaton:door:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, automaton.Snapshot{State: 4, Started: true}, got)
}
