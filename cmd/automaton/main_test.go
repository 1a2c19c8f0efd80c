package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/automaton"
)

const doorDef = `
id: door
states:
  - name: closed
    type: initial
    enter: count
    on: ["open->opened/record:blocked"]
  - name: opened
    exit: log
    on: ["close->closed/record", "lock->locked"]
  - name: locked
    type: final
`

func writeDef(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doorDef), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	return stdout.String()
}

func TestRun_PersistsAcrossInvocations(t *testing.T) {
	def := writeDef(t)
	t.Setenv("AUTOMATON_STORE_BACKEND", "file")
	t.Setenv("AUTOMATON_FILE_DIR", t.TempDir())
	t.Setenv("AUTOMATON_SETTLE_DELAY", "100ms")

	assert.Equal(t, "door-1\topened\n", runCLI(t, "run", "-def", def, "-send", "open"))
	assert.Equal(t, "door-1\topened\n", runCLI(t, "run", "-def", def), "restored position")
	assert.Equal(t, "door-1\tlocked\n", runCLI(t, "run", "-def", def, "-send", "lock"))
	assert.Equal(t, "door-1\tclosed\n", runCLI(t, "run", "-def", def), "a finished runner starts over")
}

func TestRun_MultipleRunners(t *testing.T) {
	def := writeDef(t)
	t.Setenv("AUTOMATON_SETTLE_DELAY", "100ms")

	out := runCLI(t, "run", "-def", def, "-runners", "2", "-send", "open, close ,open")
	assert.Equal(t, "door-1\topened\ndoor-2\topened\n", out)
}

func TestRun_Metrics(t *testing.T) {
	def := writeDef(t)
	t.Setenv("AUTOMATON_SETTLE_DELAY", "100ms")

	out := runCLI(t, "run", "-def", def, "-send", "open,close", "-metrics")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Equal(t, "door-1\tclosed", lines[0])
	assert.Equal(t, `automaton_transitions_total{automaton="door",from="closed",to="opened"} 1`, lines[1])
	assert.Equal(t, `automaton_transitions_total{automaton="door",from="opened",to="closed"} 1`, lines[2])

	assert.Equal(t, "door-1\tclosed\n", runCLI(t, "run", "-def", def), "counters are printed only on request")
}

func TestRun_BadgerStore(t *testing.T) {
	def := writeDef(t)
	t.Setenv("AUTOMATON_BADGER_DIR", t.TempDir())
	t.Setenv("AUTOMATON_SETTLE_DELAY", "100ms")

	assert.Equal(t, "door-1\topened\n", runCLI(t, "run", "-def", def, "-store", "badger", "-send", "open"))
	assert.Equal(t, "door-1\topened\n", runCLI(t, "run", "-def", def, "-store", "badger"))
}

func TestRun_Errors(t *testing.T) {
	def := writeDef(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"walk"}},
		{"missing def", []string{"run"}},
		{"unknown store", []string{"run", "-def", def, "-store", "tape"}},
		{"zero runners", []string{"run", "-def", def, "-runners", "0"}},
		{"missing file", []string{"run", "-def", filepath.Join(t.TempDir(), "none.yaml")}},
		{"bad flag", []string{"export", "-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_UnregisteredAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: m\nstates: [{name: a, type: initial, enter: teleport}]"), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"run", "-def", path}, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, automaton.IsValidationCode(err, automaton.ErrCodeMissingAction))
}

func TestExport(t *testing.T) {
	def := writeDef(t)

	out := runCLI(t, "export", "-def", def)

	var machine struct {
		ID      string         `json:"id"`
		Initial string         `json:"initial"`
		States  map[string]any `json:"states"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &machine))
	assert.Equal(t, "door", machine.ID)
	assert.Equal(t, "closed", machine.Initial)
	assert.Len(t, machine.States, 3)
}

func TestExport_ToFile(t *testing.T) {
	def := writeDef(t)
	outFile := filepath.Join(t.TempDir(), "door.json")

	runCLI(t, "export", "-def", def, "-pretty", "-o", outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\": \"door\"")
}

func TestSplitTriggers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTriggers(" a,,b , "))
	assert.Nil(t, splitTriggers(""))
}
