// Command automaton runs and exports automata described in YAML.
//
// Usage:
//
//	automaton run -def door.yaml -send open,close [-runners N] [-store memory|file|redis|badger] [-metrics]
//	automaton export -def door.yaml [-pretty] [-o FILE]
//
// Defaults come from AUTOMATON_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/automaton"
	"github.com/felixgeelhaar/automaton/bus"
	"github.com/felixgeelhaar/automaton/export"
	"github.com/felixgeelhaar/automaton/internal/config"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
	"github.com/felixgeelhaar/automaton/metrics"
)

var errUsage = errors.New("usage: automaton <run|export> -def FILE [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Output:  stderr,
		Console: cfg.LogConsole,
	})

	switch args[0] {
	case "run":
		return runCommand(ctx, cfg, args[1:], stdout)
	case "export":
		return exportCommand(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func runCommand(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("automaton run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	def := fs.String("def", "", "YAML definition file")
	send := fs.String("send", "", "Comma-separated triggers to publish in order")
	fs.IntVar(&cfg.Runners, "runners", cfg.Runners, "Number of runners walking the automaton")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Snapshot store: memory, file, redis or badger")
	dumpMetrics := fs.Bool("metrics", false, "Print counters gathered during the run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *def == "" {
		return errUsage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := xlog.WithComponent("run")

	a, err := automaton.LoadFile(*def, builtinRegistry(logger))
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	hub := bus.New[string]()
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder[string](reg)
	notifier := automaton.NewLogNotifier[string](logger)

	runners := make([]*automaton.Runner[string], cfg.Runners)
	for i := range runners {
		r, err := automaton.NewRunner(a,
			automaton.WithName(fmt.Sprintf("%s-%d", a.ID(), i+1)),
			automaton.WithInstanceID(int64(i+1)),
			automaton.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		r.AddNotifier(notifier)
		r.AddNotifier(rec)
		r.SetEventSource(hub)
		runners[i] = r
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error {
			restored, err := r.RestoreInstanceState(gctx, store)
			if err != nil {
				return err
			}
			logger.Debug().Str(xlog.FieldRunner, r.Name()).Bool("restored", restored).Msg("runner ready")
			r.Start()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		stopAll(runners)
		return err
	}

	for _, trigger := range splitTriggers(*send) {
		if n := hub.Send(trigger); n == 0 {
			logger.Warn().Str(xlog.FieldTrigger, trigger).Msg("no runner listens for trigger")
		}
	}

	select {
	case <-ctx.Done():
		stopAll(runners)
		return ctx.Err()
	case <-time.After(cfg.SettleDelay):
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error {
			r.Pause()
			defer r.Stop()
			snap := r.Snapshot()
			if err := r.SaveInstanceState(gctx, store); err != nil {
				return err
			}
			logger.Debug().Str(xlog.FieldRunner, r.Name()).Bool("started", snap.Started).Msg("runner saved")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range runners {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\n", r.Name(), r.CurrentStateName()); err != nil {
			return err
		}
	}
	if *dumpMetrics {
		return metrics.WriteCounters(stdout, reg)
	}
	return nil
}

func exportCommand(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("automaton export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	def := fs.String("def", "", "YAML definition file")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *def == "" {
		return errUsage
	}

	a, err := automaton.LoadFile(*def, builtinRegistry(zerolog.Nop()))
	if err != nil {
		return err
	}

	var exportArgs []string
	if *pretty {
		exportArgs = append(exportArgs, "-pretty")
	}
	if *output != "" {
		exportArgs = append(exportArgs, "-o", *output)
	}
	machines := map[string]export.MachineExporter{
		a.ID(): export.NewXStateExporter(a),
	}
	return export.RunCLIWithOutput(machines, append(exportArgs, "-machine", a.ID()), stdout)
}

func stopAll(runners []*automaton.Runner[string]) {
	for _, r := range runners {
		r.Stop()
	}
}

func splitTriggers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
