// Package metrics exports runner activity as Prometheus counters.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/automaton"
)

// Metric names
const (
	TransitionsTotal    = "automaton_transitions_total"
	EventsDroppedTotal  = "automaton_events_dropped_total"
	ActionFailuresTotal = "automaton_action_failures_total"
)

// Recorder counts transitions, dropped events and action failures. Labels
// carry automaton and state names only, never instance ids.
type Recorder[K comparable] struct {
	transitions *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewRecorder registers the counters on reg. Only one Recorder may be
// registered per registry.
func NewRecorder[K comparable](reg prometheus.Registerer) *Recorder[K] {
	f := promauto.With(reg)
	return &Recorder[K]{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: TransitionsTotal,
			Help: "Total number of state transitions, by automaton and state pair.",
		}, []string{"automaton", "from", "to"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: EventsDroppedTotal,
			Help: "Total number of events that caused no transition, by automaton and reason.",
		}, []string{"automaton", "reason"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: ActionFailuresTotal,
			Help: "Total number of panicking actions or guards, by automaton and phase.",
		}, []string{"automaton", "phase"}),
	}
}

// StateChanged implements automaton.Notifier
func (r *Recorder[K]) StateChanged(c automaton.StateChange[K]) {
	r.transitions.WithLabelValues(c.Automaton, c.FromName, c.ToName).Inc()
}

// EventDropped implements automaton.DropNotifier
func (r *Recorder[K]) EventDropped(d automaton.Drop[K]) {
	r.dropped.WithLabelValues(d.Automaton, string(d.Reason)).Inc()
}

// ActionFailed implements automaton.FaultNotifier
func (r *Recorder[K]) ActionFailed(f automaton.Fault) {
	r.failures.WithLabelValues(f.Automaton, f.Phase).Inc()
}

// WriteCounters prints every counter gathered from g as one
// `name{label="value",...} value` line, sorted by name and labels.
func WriteCounters(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			value := strconv.FormatFloat(m.GetCounter().GetValue(), 'g', -1, 64)
			if _, err := fmt.Fprintf(w, "%s{%s} %s\n", mf.GetName(), strings.Join(labels, ","), value); err != nil {
				return err
			}
		}
	}
	return nil
}

var (
	_ automaton.Notifier[string]     = (*Recorder[string])(nil)
	_ automaton.DropNotifier[string] = (*Recorder[string])(nil)
	_ automaton.FaultNotifier        = (*Recorder[string])(nil)
)
