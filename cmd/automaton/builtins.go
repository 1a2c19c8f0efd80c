package main

import (
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/automaton"
	xlog "github.com/felixgeelhaar/automaton/internal/log"
)

// Context keys written by the built-in actions
const (
	keyVisits  = "visits"
	keyTrail   = "trail"
	keyBlocked = "blocked"
)

// builtinRegistry names the actions and guards definitions can use from the CLI:
//
//	state actions: log, count
//	transition actions: record, block, unblock
//	guards: blocked
func builtinRegistry(logger zerolog.Logger) *automaton.Registry {
	return automaton.NewRegistry().
		WithStateAction("log", func(rc *automaton.Context) {
			logger.Info().Int(keyVisits, rc.GetInt(keyVisits, 0)).Msg("state action")
		}).
		WithStateAction("count", func(rc *automaton.Context) {
			rc.SetInt(keyVisits, rc.GetInt(keyVisits, 0)+1)
		}).
		WithAction("record", func(ev automaton.Event[string], rc *automaton.Context) {
			rc.SetString(keyTrail, rc.GetString(keyTrail, "")+ev.Key+";")
			logger.Debug().Str(xlog.FieldTrigger, ev.Key).Msg("recorded")
		}).
		WithAction("block", func(_ automaton.Event[string], rc *automaton.Context) {
			rc.SetBool(keyBlocked, true)
		}).
		WithAction("unblock", func(_ automaton.Event[string], rc *automaton.Context) {
			rc.SetBool(keyBlocked, false)
		}).
		WithGuard(keyBlocked, automaton.Unless[string](keyBlocked))
}
