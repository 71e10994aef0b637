// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// options.go — functional options for Engine.
//
// Contract:
//   - Option constructors VALIDATE and PANIC on meaningless inputs.
//     Engine methods themselves never panic.
//   - Defaults: one worker, seed 1, no logging, no observer.

package sis

import (
	"fmt"
	"log/slog"

	"github.com/katalvlaran/ssis/logging"
)

// Option customizes an Engine.
type Option func(*options)

type options struct {
	workers  int
	seed     int64
	logger   *slog.Logger
	observer Observer
}

// defaultSeed mirrors the seed==0 policy of the builder RNG helpers.
const defaultSeed int64 = 1

func newOptions(opts ...Option) options {
	o := options{
		workers: 1,
		seed:    defaultSeed,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithWorkers bounds the number of trials run concurrently by Aggregate.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("sis: WithWorkers(%d)", n))
	}
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed sets the root seed from which every trial stream is derived.
// Seed 0 selects the default seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		if seed == 0 {
			seed = defaultSeed
		}
		o.seed = seed
	}
}

// WithLogger attaches a logger for debug-level trial and snapshot records.
// Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("sis: WithLogger(nil)")
	}
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver attaches an Observer notified of events and trial outcomes.
// Panics on nil.
func WithObserver(obs Observer) Option {
	if obs == nil {
		panic("sis: WithObserver(nil)")
	}
	return func(o *options) {
		o.observer = obs
	}
}
