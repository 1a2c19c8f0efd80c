package automaton

import (
	"testing"
)

const benchDef = `
id: bench
states:
  - name: idle
    type: initial
    enter: onEnter
    exit: onExit
    on: ["START->running:stopped"]
  - name: running
    enter: onEnter
    on: ["STOP->idle"]
`

func benchRegistry() *Registry {
	return NewRegistry().
		WithStateAction("onEnter", func(rc *Context) { rc.SetInt("count", rc.GetInt("count", 0)+1) }).
		WithStateAction("onExit", func(rc *Context) { rc.SetInt("count", rc.GetInt("count", 0)-1) }).
		WithGuard("stopped", Unless[string]("stopped"))
}

// BenchmarkFromYAML_BuildTime benchmarks automaton construction from YAML
func BenchmarkFromYAML_BuildTime(b *testing.B) {
	reg := benchRegistry()
	for b.Loop() {
		if _, err := FromYAML([]byte(benchDef), reg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBuilder_BuildTime benchmarks automaton construction with the builder
func BenchmarkBuilder_BuildTime(b *testing.B) {
	count := func(rc *Context) { rc.SetInt("count", rc.GetInt("count", 0)+1) }
	for b.Loop() {
		bl := NewBuilder[string]("bench")
		if err := bl.AddState(1, "idle", AsInitial(), OnEnter(count), OnExit(count)); err != nil {
			b.Fatal(err)
		}
		if err := bl.AddState(2, "running", OnEnter(count)); err != nil {
			b.Fatal(err)
		}
		bl.AddTransition(1, 2, "START", GuardedBy(Unless[string]("stopped"))).
			AddTransition(2, 1, "STOP")
		if _, err := bl.Build(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRunner_Dispatch measures queueing and resolving events on one worker
func BenchmarkRunner_Dispatch(b *testing.B) {
	a, err := FromYAML([]byte(benchDef), benchRegistry())
	if err != nil {
		b.Fatal(err)
	}
	r, err := NewRunner(a)
	if err != nil {
		b.Fatal(err)
	}
	done := make(chan struct{}, 1)
	r.AddNotifier(NotifierFunc[string](func(c StateChange[string]) {
		if c.ToName == "idle" {
			done <- struct{}{}
		}
	}))
	r.Start()
	defer r.Stop()

	for b.Loop() {
		_ = r.Send("START")
		_ = r.Send("STOP")
		<-done
	}
}
