package ir

import (
	"errors"
	"strings"
	"testing"
)

type testCtx struct{}

func newTestGraph(t *testing.T, ids ...StateID) *Graph[int64, testCtx] {
	t.Helper()
	g := NewGraph[int64, testCtx]("test")
	for _, id := range ids {
		if err := g.AddState(&StateConfig[testCtx]{ID: id, Name: stateName(id)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return g
}

func stateName(id StateID) string {
	return []string{"idle", "active", "done", "failed"}[id]
}

func TestValidate_ValidGraph(t *testing.T) {
	g := newTestGraph(t, 0, 1)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 1, Trigger: 100})

	if err := Validate(g); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestValidate_InvalidTransitionTarget(t *testing.T) {
	g := newTestGraph(t, 0)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 7, Trigger: 100})

	err := Validate(g)
	if err == nil {
		t.Fatal("expected error for invalid transition target")
	}
	if !err.HasCode(ErrCodeInvalidTarget) {
		t.Errorf("expected INVALID_TARGET error, got: %v", err)
	}
}

func TestValidate_InvalidTransitionSource(t *testing.T) {
	g := newTestGraph(t, 0)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 3, To: 0, Trigger: 100})

	err := Validate(g)
	if err == nil {
		t.Fatal("expected error for invalid transition source")
	}
	if !err.HasCode(ErrCodeInvalidSource) {
		t.Errorf("expected INVALID_SOURCE error, got: %v", err)
	}
}

func TestValidateInitial(t *testing.T) {
	tests := []struct {
		name     string
		initials []StateID
		wantCode string
	}{
		{name: "none", initials: nil, wantCode: ErrCodeNoInitial},
		{name: "one", initials: []StateID{1}},
		{name: "two", initials: []StateID{0, 2}, wantCode: ErrCodeMultipleInitial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, 0, 1, 2)
			for _, id := range tt.initials {
				g.SetType(id, StateTypeInitial)
			}

			id, err := ValidateInitial(g)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if id != tt.initials[0] {
					t.Errorf("expected initial %d, got %d", tt.initials[0], id)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error", tt.wantCode)
			}
			if !err.HasCode(tt.wantCode) {
				t.Errorf("expected %s error, got: %v", tt.wantCode, err)
			}
			if !errors.Is(err, ErrStructural) {
				t.Error("expected validation error to match ErrStructural")
			}
		})
	}
}

func TestValidationError_MultipleIssues(t *testing.T) {
	g := newTestGraph(t, 0)
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 5, Trigger: 1})
	g.AddTransition(&TransitionConfig[int64, testCtx]{From: 0, To: 6, Trigger: 2})

	err := Validate(g)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Issues) != 2 {
		t.Errorf("expected 2 issues, got %d", len(err.Issues))
	}
	if !strings.Contains(err.Error(), "validation failed with 2 issues") {
		t.Errorf("expected multi-issue message, got: %s", err.Error())
	}
}

func TestValidationIssue_String(t *testing.T) {
	issue := ValidationIssue{
		Code:    ErrCodeInvalidTarget,
		Message: "transition target 4 not found",
		Path:    []string{"transitions", "0", "1"},
	}

	want := "[INVALID_TARGET] transition target 4 not found (at transitions.0.1)"
	if got := issue.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
