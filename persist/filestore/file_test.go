package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/automaton"
	"github.com/felixgeelhaar/automaton/persist/storetest"
)

func TestStore(t *testing.T) {
	store, err := Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	storetest.Run(t, store)
}

func TestStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "automaton%3Adoor%3A7.json"), store.Path("automaton:door:7"))
	assert.Equal(t, filepath.Join(dir, "a%2Fb.json"), store.Path("a/b"))
}

func TestStore_WritesJSONFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "nested", "dir"), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "automaton:door:7", automaton.Snapshot{State: 2, Started: true}))

	data, err := os.ReadFile(store.Path("automaton:door:7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":2,"started":true,"paused":false}`, string(data))
}

func TestStore_CorruptFile(t *testing.T) {
	store, err := Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path("k"), []byte("{"), 0o600))

	_, _, err = store.Load(context.Background(), "k")
	assert.Error(t, err)
}
