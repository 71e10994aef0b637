// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// engine.go — the SIS transition engine: seeding and single-event steps.
//
// Step algorithm, ModeConstant:
//  1. Enumerate every infected node i: one Recovery(i) with
//     RecoveryPropensity, and one Infection(j←i) with InfectionPropensity
//     for every susceptible contact j of i.
//  2. dt = min over events of Exp(1)/propensity.
//  3. Independently pick one event with probability ∝ propensity:
//     r = total·U, the first event whose running sum exceeds r.
//  4. T += dt, apply the event, L = Λ(T).
//
// Step algorithm, ModeSeasonal (exact time rescaling):
//   - nSI S–I contacts each fire at λ(t); nI infected nodes each recover at μ.
//   - Infection arrival: Λ⁻¹(Λ(T) + E₁/nSI). Recovery arrival: T + E₂/(nI·μ).
//   - The earlier arrival fires; its target is uniform among that kind.
//
// Determinism: a State's stream fully determines the trajectory.
package sis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/ssis/logging"
	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/seasonal"
)

const (
	methodNew                = "New"
	methodInfectNode         = "InfectNode"
	methodRecoverNode        = "RecoverNode"
	methodInfectRandomNode   = "InfectRandomNode"
	methodInfectRandomNodes  = "InfectRandomNodes"
	methodImplementNextEvent = "ImplementNextEvent"
)

// Engine applies SIS transitions to States. It is immutable after New and
// may drive any number of States concurrently.
type Engine struct {
	cfg  Config
	rate *seasonal.Rate
	opts options
}

// New validates cfg, builds the seasonal rate and applies opts.
//
// Errors:
//   - ErrConfiguration, wrapping seasonal.ErrConfiguration for bad signal
//     parameters.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rate, err := seasonal.New(cfg.T1, cfg.T2, cfg.Lambda, cfg.DLambda)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", methodNew, ErrConfiguration, err)
	}

	return &Engine{cfg: cfg, rate: rate, opts: newOptions(opts...)}, nil
}

// Config returns a copy of the resolved configuration (defaults applied).
func (e *Engine) Config() Config { return e.cfg.withDefaults() }

// Rate returns the seasonal transmissibility signal.
func (e *Engine) Rate() *seasonal.Rate { return e.rate }

// Seed returns the root seed of trial streams.
func (e *Engine) Seed() int64 { return e.opts.seed }

// TrialSeed returns the stream seed of the given trial index. Trial k of
// Aggregate always uses TrialSeed(k).
func (e *Engine) TrialSeed(trial int) int64 {
	return deriveSeed(e.opts.seed, uint64(trial))
}

// NewState allocates a State over topo seeded for the given trial index.
func (e *Engine) NewState(topo *network.Topology, trial int) (*State, error) {
	return NewState(topo, e.TrialSeed(trial))
}

// Reset sets T = L = 0 and every node susceptible.
func (e *Engine) Reset(st *State) {
	st.reset()
}

// InfectNode marks node id infected. Infecting an infected node is a no-op.
//
// Errors:
//   - ErrNodeOutOfRange: id ∉ [0, N).
func (e *Engine) InfectNode(st *State, id int) error {
	if id < 0 || id >= st.VertexCount() {
		return fmt.Errorf("%s: id=%d, N=%d: %w", methodInfectNode, id, st.VertexCount(), ErrNodeOutOfRange)
	}
	st.infect(id)

	return nil
}

// RecoverNode marks node id susceptible. Recovering a susceptible node is
// a no-op.
//
// Errors:
//   - ErrNodeOutOfRange: id ∉ [0, N).
func (e *Engine) RecoverNode(st *State, id int) error {
	if id < 0 || id >= st.VertexCount() {
		return fmt.Errorf("%s: id=%d, N=%d: %w", methodRecoverNode, id, st.VertexCount(), ErrNodeOutOfRange)
	}
	st.heal(id)

	return nil
}

// InfectRandomNode infects one node drawn uniformly from the susceptible
// set. Termination does not depend on luck: the draw is a single index.
//
// Errors:
//   - ErrPrecondition: every node is already infected.
func (e *Engine) InfectRandomNode(st *State) error {
	if len(st.susceptible) == 0 {
		return fmt.Errorf("%s: all %d nodes infected: %w", methodInfectRandomNode, st.VertexCount(), ErrPrecondition)
	}
	st.infect(st.susceptible[st.rng.Intn(len(st.susceptible))])

	return nil
}

// SeedCount returns max(1, round(fraction·n)) clamped to n. A zero fraction
// still seeds one node.
func SeedCount(fraction float64, n int) int {
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	return k
}

// InfectRandomNodes infects the first SeedCount(fraction, N) nodes of a
// uniformly random permutation of all nodes. It returns the number of
// nodes whose state changed, which equals the seed count after Reset.
//
// Errors:
//   - ErrConfiguration: fraction is negative, NaN or infinite.
func (e *Engine) InfectRandomNodes(st *State, fraction float64) (int, error) {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) || fraction < 0 {
		return 0, fmt.Errorf("%s: fraction=%g: %w", methodInfectRandomNodes, fraction, ErrConfiguration)
	}
	n := st.VertexCount()
	if cap(st.perm) < n {
		st.perm = make([]int, n)
	}
	st.perm = st.perm[:n]
	for i := range st.perm {
		st.perm[i] = i
	}
	shuffleInts(st.perm, st.rng)

	changed := 0
	for _, id := range st.perm[:SeedCount(fraction, n)] {
		if st.infect(id) {
			changed++
		}
	}

	return changed, nil
}

// ImplementNextEvent draws and applies one transition, advancing the clock.
// It returns the infected count after the event.
//
// Errors:
//   - ErrPrecondition: no node is infected (the chain is absorbed).
//   - ErrDegenerate: every candidate event has zero propensity.
func (e *Engine) ImplementNextEvent(st *State) (int, error) {
	ev, err := e.nextEvent(st)
	if err != nil {
		return st.nInfected, err
	}
	if e.opts.observer != nil {
		e.opts.observer.ObserveEvent(ev)
	}

	return st.nInfected, nil
}

// nextEvent is ImplementNextEvent returning the applied event.
func (e *Engine) nextEvent(st *State) (Event, error) {
	if st.nInfected == 0 {
		return nil, fmt.Errorf("%s: no infected node: %w", methodImplementNextEvent, ErrPrecondition)
	}
	e.enumerate(st)

	var (
		ev  Event
		at  float64
		err error
	)
	switch e.cfg.Mode {
	case ModeSeasonal:
		ev, at, err = e.stepSeasonal(st)
	default:
		ev, at, err = e.stepConstant(st)
	}
	if err != nil {
		return nil, err
	}

	// The clock must strictly advance even when dt underflows against T.
	if !(at > st.t) {
		at = math.Nextafter(st.t, math.Inf(1))
	}
	st.t = at
	switch v := ev.(type) {
	case Infection:
		st.infect(v.Target)
	case Recovery:
		st.heal(v.Target)
	}
	st.l = e.rate.EvaluateIntegral(st.t)

	if ctx := context.Background(); e.opts.logger.Enabled(ctx, logging.LevelTrace) {
		e.opts.logger.Log(ctx, logging.LevelTrace, "event",
			slog.String("kind", ev.Kind().String()),
			slog.Int("node", ev.Node()),
			slog.Float64("t", st.t),
			slog.Int("infected", st.nInfected))
	}

	return ev, nil
}

// enumerate fills st.buf with the candidate events of the current state.
// Propensities are those of ModeConstant; the seasonal step only uses the
// event identities.
func (e *Engine) enumerate(st *State) {
	b := &st.buf
	b.reset()
	pRec, pInf := *e.cfg.RecoveryPropensity, *e.cfg.InfectionPropensity
	for i, inf := range st.infected {
		if !inf {
			continue
		}
		b.recoveries = append(b.recoveries, Recovery{Target: i, Propensity: pRec})
		for _, j := range st.topo.Neighbors(i) {
			if !st.infected[j] {
				b.infections = append(b.infections, Infection{Target: j, Source: i, Propensity: pInf})
			}
		}
	}
}

// stepConstant draws the waiting time and the event independently.
func (e *Engine) stepConstant(st *State) (Event, float64, error) {
	b := &st.buf
	n := b.len()

	dtmin := math.Inf(1)
	total := 0.0
	for i := 0; i < n; i++ {
		p := b.rate(i)
		if p > 0 {
			if dt := st.rng.ExpFloat64() / p; dt < dtmin {
				dtmin = dt
			}
		}
		total += p
		b.cum = append(b.cum, total)
	}
	if !(total > 0) {
		return nil, 0, fmt.Errorf("%s: %d events: %w", methodImplementNextEvent, n, ErrDegenerate)
	}

	r := total * st.rng.Float64()
	k := sortSearchCum(b.cum, r)

	return b.at(k), st.t + dtmin, nil
}

// sortSearchCum returns the first index whose running sum exceeds r; the
// last index when rounding leaves none.
func sortSearchCum(cum []float64, r float64) int {
	lo, hi := 0, len(cum)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cum[mid] > r {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == len(cum) {
		lo = len(cum) - 1
	}

	return lo
}

// stepSeasonal samples the next infection and recovery arrival times by
// time rescaling and fires the earlier one.
func (e *Engine) stepSeasonal(st *State) (Event, float64, error) {
	b := &st.buf
	nSI := len(b.infections)
	nI := len(b.recoveries)
	mu := e.cfg.RecoveryRate

	tInf := math.Inf(1)
	if nSI > 0 && e.rate.PeriodIntegral() > 0 {
		target := e.rate.EvaluateIntegral(st.t) + st.rng.ExpFloat64()/float64(nSI)
		tInf = e.rate.EvaluateIntegralInverse(target)
	}
	tRec := math.Inf(1)
	if nI > 0 && mu > 0 {
		tRec = st.t + st.rng.ExpFloat64()/(float64(nI)*mu)
	}

	switch {
	case math.IsInf(tInf, 1) && math.IsInf(tRec, 1):
		return nil, 0, fmt.Errorf("%s: nSI=%d nI=%d mu=%g: %w", methodImplementNextEvent, nSI, nI, mu, ErrDegenerate)
	case tInf < tRec:
		ev := b.infections[st.rng.Intn(nSI)]
		ev.Propensity = e.rate.Evaluate(tInf)
		return ev, tInf, nil
	default:
		ev := b.recoveries[st.rng.Intn(nI)]
		ev.Propensity = mu
		return ev, tRec, nil
	}
}
