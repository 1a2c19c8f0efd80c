package ir

import (
	"errors"
	"testing"
)

func TestGraph_AddStateDuplicate(t *testing.T) {
	g := newTestGraph(t, 0)

	err := g.AddState(&StateConfig[testCtx]{ID: 0, Name: "again"})
	if err == nil {
		t.Fatal("expected duplicate state error")
	}
	if !errors.Is(err, ErrStructural) {
		t.Errorf("expected structural error, got %v", err)
	}
	if g.GetState(0).Name != "idle" {
		t.Errorf("duplicate must not overwrite, got %q", g.GetState(0).Name)
	}
}

func TestGraph_EdgeOrder(t *testing.T) {
	g := newTestGraph(t, 0, 1, 2, 3)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 2, Trigger: 10})
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 1, Trigger: 10})
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 2, Trigger: 20})

	edges := g.Edges(0)
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].To != 2 || edges[1].To != 1 {
		t.Errorf("expected edge order [2 1], got [%d %d]", edges[0].To, edges[1].To)
	}
	if len(edges[0].Transitions) != 2 {
		t.Errorf("expected transitions to accumulate on edge 0->2, got %d", len(edges[0].Transitions))
	}
	if edges[0].Transitions[0].Trigger != 10 || edges[0].Transitions[1].Trigger != 20 {
		t.Error("expected registration order within edge")
	}
}

func TestGraph_Triggers(t *testing.T) {
	g := newTestGraph(t, 0, 1)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 1, Trigger: 200})
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 1, To: 0, Trigger: 100})
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 0, Trigger: 200})

	triggers := g.Triggers()
	if len(triggers) != 2 || triggers[0] != 200 || triggers[1] != 100 {
		t.Errorf("expected [200 100], got %v", triggers)
	}
}

func TestGraph_SetType(t *testing.T) {
	g := newTestGraph(t, 0, 1)

	if !g.SetType(1, StateTypeFinal) {
		t.Error("expected SetType to succeed for known state")
	}
	if g.GetState(1).Type != StateTypeFinal {
		t.Errorf("expected final, got %s", g.GetState(1).Type)
	}
	if g.SetType(9, StateTypeInitial) {
		t.Error("expected SetType to report unknown state")
	}
}

func TestGraph_Clone(t *testing.T) {
	g := newTestGraph(t, 0, 1)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 1, Trigger: 1})

	c := g.Clone()
	g.SetType(0, StateTypeInitial)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 1, Trigger: 2})

	if c.GetState(0).Type != StateTypeDefault {
		t.Error("clone must not observe later type changes")
	}
	if n := len(c.Edges(0)[0].Transitions); n != 1 {
		t.Errorf("clone must not observe later transitions, got %d", n)
	}
	if len(c.Triggers()) != 1 {
		t.Errorf("expected 1 trigger in clone, got %d", len(c.Triggers()))
	}
}

func TestGraph_Guarded(t *testing.T) {
	blocked := &TransitionConfig[int64, testCtx]{
		Guard: func(ev Event[int64], ctx testCtx) bool { return ev.Key == 1 },
	}
	open := &TransitionConfig[int64, testCtx]{}

	if !blocked.Guarded(Event[int64]{Key: 1}, testCtx{}) {
		t.Error("expected guard returning true to block")
	}
	if blocked.Guarded(Event[int64]{Key: 2}, testCtx{}) {
		t.Error("expected guard returning false not to block")
	}
	if open.Guarded(Event[int64]{Key: 1}, testCtx{}) {
		t.Error("expected nil guard never to block")
	}
}

func TestStateType_String(t *testing.T) {
	tests := []struct {
		st   StateType
		want string
	}{
		{StateTypeDefault, "default"},
		{StateTypeInitial, "initial"},
		{StateTypeFinal, "final"},
		{StateType(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("StateType(%d).String() = %q, want %q", tt.st, got, tt.want)
		}
	}
}
