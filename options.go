package automaton

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/automaton/internal/worker"
)

// Scheduler runs a runner's work serially. Post and PostDelayed return false
// once Quit has been called; Quit cancels everything still pending.
type Scheduler interface {
	Post(fn func()) bool
	PostDelayed(fn func(), d time.Duration) bool
	Quit()
}

// SchedulerFactory creates the dedicated scheduler of one runner
type SchedulerFactory func(name string) Scheduler

// EventSource delivers external events to a runner. Subscribe is called when
// the runner starts or resumes, with the automaton's triggers; the returned
// function is called when it pauses or stops. Neither is called while the
// runner holds its lock, so deliver may run from inside Subscribe and the
// unsubscribe function may wait for deliveries in flight.
type EventSource[K comparable] interface {
	Subscribe(keys []K, deliver func(ev Event[K])) (unsubscribe func())
}

// Option configures a Runner during construction
type Option func(*options)

type options struct {
	name       string
	instanceID int64
	hasID      bool
	rc         *Context
	logger     zerolog.Logger
	tracer     trace.Tracer
	scheduler  SchedulerFactory
}

func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
		tracer: noop.NewTracerProvider().Tracer(tracerName),
		scheduler: func(name string) Scheduler {
			return worker.New(name)
		},
	}
}

// WithName sets the runner name used in notifications and state keys.
// Defaults to the automaton ID.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithInstanceID sets the instance ID used to correlate notifications of
// runners sharing a context. Defaults to a random positive value.
func WithInstanceID(id int64) Option {
	return func(o *options) {
		o.instanceID = id
		o.hasID = true
	}
}

// WithContext injects an existing Context, to reuse it across runners or restarts
func WithContext(rc *Context) Option {
	return func(o *options) { o.rc = rc }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracer sets the tracer used for one span per dispatched event
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithScheduler replaces the default worker goroutine
func WithScheduler(factory SchedulerFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.scheduler = factory
		}
	}
}
