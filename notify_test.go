package automaton

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a logger on another goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier[string](zerolog.New(&buf))

	n.StateChanged(StateChange[string]{
		Automaton: "door", Runner: "door-1", InstanceID: 1,
		FromName: "closed", ToName: "opened", Trigger: "open",
	})
	n.EventDropped(Drop[string]{
		Automaton: "door", Runner: "door-1", InstanceID: 1,
		StateName: "opened", Trigger: "open", Reason: DropNoTransition,
	})
	n.ActionFailed(Fault{Automaton: "door", Runner: "door-1", Phase: PhaseEnter, State: "opened", Recovered: "boom"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "state changed", lines[0]["message"])
	assert.Equal(t, "closed", lines[0]["old_state"])
	assert.Equal(t, "opened", lines[0]["new_state"])
	assert.Equal(t, "open", lines[0]["trigger"])
	assert.Equal(t, float64(1), lines[0]["instance_id"])

	assert.Equal(t, "debug", lines[1]["level"])
	assert.Equal(t, "no_transition", lines[1]["reason"])

	assert.Equal(t, "error", lines[2]["level"])
	assert.Equal(t, "enter", lines[2]["phase"])
	assert.Equal(t, "boom", lines[2]["recovered"])
}

func TestLogNotifier_WiredToRunner(t *testing.T) {
	var buf syncBuffer
	a := newIdleAutomaton(t, nil, nil, nil)
	r, rec := startRunner(t, a, WithName("logged"))
	r.AddNotifier(NewLogNotifier[Message](zerolog.New(&buf)))

	require.NoError(t, r.Send(msgActivate))
	rec.next(t)

	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), `"runner":"logged"`)
	}, waitFor, time.Millisecond)
}
