package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuards(t *testing.T) {
	always := func(Event[string], *Context) bool { return true }
	rc := NewContext()
	ev := Event[string]{Key: "go"}

	tests := []struct {
		name  string
		guard Guard[string]
		want  bool
	}{
		{"never", Never[string](), false},
		{"not never", Not(Never[string]()), true},
		{"not always", Not[string](always), false},
		{"any of none", AnyOf[string](), false},
		{"any of skips nil", AnyOf[string](nil, Never[string]()), false},
		{"any of blocks", AnyOf[string](Never[string](), always), true},
		{"unless unset", Unless[string]("stop"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guard(ev, rc))
		})
	}

	rc.SetBool("stop", true)
	assert.True(t, Unless[string]("stop")(ev, rc))
}
