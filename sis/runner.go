// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// runner.go — single trials and Monte-Carlo aggregation.
//
// Trial loop: Reset, seed, then step until T ≥ tmax or extinction. The
// first event and every SnapshotEvery-th event after it emit a Snapshot
// pairing the clock read before the event with the infected fraction after
// it, so the first row of every trial is stamped T = 0.
//
// Aggregation runs trials on a bounded pool of workers. Each worker owns one
// State and reseeds it per trial with TrialSeed(k), so the Summary is
// identical for every worker count.
package sis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/ssis/network"
)

const (
	methodRunSingleTrial = "RunSingleTrial"
	methodAggregate      = "Aggregate"

	// ctxCheckEvery is how many events pass between cancellation checks.
	ctxCheckEvery = 1024
)

// Snapshot is one periodic observation of a trial: T is the clock just
// before the observed event, Fraction the infected share just after it.
type Snapshot struct {
	Label    string
	T        float64
	Fraction float64
}

// Sink receives snapshots. Implementations used with Aggregate-style
// fan-out must be safe for concurrent use.
type Sink interface {
	WriteSnapshot(s Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(s Snapshot) error

// WriteSnapshot calls f(s).
func (f SinkFunc) WriteSnapshot(s Snapshot) error { return f(s) }

// Observer is notified of applied events and finished trials. Engines
// share one Observer across workers, so it must be safe for concurrent use.
type Observer interface {
	ObserveEvent(ev Event)
	ObserveTrial(res TrialResult)
}

// TrialResult describes how a trial ended.
type TrialResult struct {
	Trial         int // index within Aggregate; 0 for standalone runs
	Seeded        int
	Events        int
	Snapshots     int
	FinalT        float64
	FinalInfected int
	Extinct       bool
}

// Summary reduces a batch of trials.
type Summary struct {
	Trials             int
	Mean               float64 // mean final infected count
	StdDev             float64 // sample standard deviation of the final count
	Extinct            int
	MeanExtinctionTime float64 // over extinct trials; 0 when none went extinct
	Results            []TrialResult
}

// RunSingleTrial resets st, seeds it with InfectRandomNodes(fraction) and
// steps until T ≥ tmax or no node is infected. sink may be nil.
//
// Errors:
//   - ErrConfiguration: bad fraction or tmax (negative or NaN).
//   - ErrDegenerate from a step.
//   - the sink's error, or ctx.Err() when cancelled.
func (e *Engine) RunSingleTrial(ctx context.Context, st *State, fraction, tmax float64, sink Sink, label string) (TrialResult, error) {
	return e.runTrial(ctx, st, 0, fraction, tmax, sink, label)
}

func (e *Engine) runTrial(ctx context.Context, st *State, trial int, fraction, tmax float64, sink Sink, label string) (TrialResult, error) {
	res := TrialResult{Trial: trial}
	if st == nil {
		return res, fmt.Errorf("%s: nil state: %w", methodRunSingleTrial, ErrConfiguration)
	}
	if math.IsNaN(tmax) || tmax < 0 {
		return res, fmt.Errorf("%s: tmax=%g: %w", methodRunSingleTrial, tmax, ErrConfiguration)
	}

	e.Reset(st)
	seeded, err := e.InfectRandomNodes(st, fraction)
	if err != nil {
		return res, fmt.Errorf("%s: %w", methodRunSingleTrial, err)
	}
	res.Seeded = seeded

	every := e.cfg.SnapshotEvery
	for st.t < tmax && st.nInfected > 0 {
		if res.Events%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		tPrev := st.t
		if _, err := e.ImplementNextEvent(st); err != nil {
			return res, fmt.Errorf("%s: %w", methodRunSingleTrial, err)
		}
		res.Events++

		if (res.Events-1)%every == 0 {
			snap := Snapshot{Label: label, T: tPrev, Fraction: st.Fraction()}
			e.opts.logger.Debug("snapshot",
				slog.String("label", label),
				slog.Float64("t", snap.T),
				slog.Float64("fraction", snap.Fraction))
			if sink != nil {
				if err := sink.WriteSnapshot(snap); err != nil {
					return res, fmt.Errorf("%s: sink: %w", methodRunSingleTrial, err)
				}
			}
			res.Snapshots++
		}
	}

	res.FinalT = st.t
	res.FinalInfected = st.nInfected
	res.Extinct = st.nInfected == 0
	e.opts.logger.Debug("trial finished",
		slog.Int("trial", trial),
		slog.Int("events", res.Events),
		slog.Float64("t", res.FinalT),
		slog.Int("infected", res.FinalInfected),
		slog.Bool("extinct", res.Extinct))
	if e.opts.observer != nil {
		e.opts.observer.ObserveTrial(res)
	}

	return res, nil
}

// GetAsymptoticNumberOfInfectedNodes runs numTrials independent trials and
// returns the mean final infected count.
func (e *Engine) GetAsymptoticNumberOfInfectedNodes(ctx context.Context, topo *network.Topology, fraction float64, numTrials int, tmax float64) (float64, error) {
	sum, err := e.Aggregate(ctx, topo, fraction, numTrials, tmax)
	if err != nil {
		return 0, err
	}

	return sum.Mean, nil
}

// Aggregate runs numTrials independent trials on up to WithWorkers
// goroutines and reduces them to a Summary. The first failing trial
// cancels the rest.
//
// Errors:
//   - ErrConfiguration: nil topology, numTrials < 1, bad fraction or tmax.
//   - any trial error, or ctx.Err().
func (e *Engine) Aggregate(ctx context.Context, topo *network.Topology, fraction float64, numTrials int, tmax float64) (Summary, error) {
	if topo == nil {
		return Summary{}, fmt.Errorf("%s: nil topology: %w", methodAggregate, ErrConfiguration)
	}
	if numTrials < 1 {
		return Summary{}, fmt.Errorf("%s: numTrials=%d: %w", methodAggregate, numTrials, ErrConfiguration)
	}

	workers := e.opts.workers
	if workers > numTrials {
		workers = numTrials
	}

	results := make([]TrialResult, numTrials)
	trials := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(trials)
		for k := 0; k < numTrials; k++ {
			select {
			case trials <- k:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	done := 0
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			st, err := NewState(topo, 0)
			if err != nil {
				return err
			}
			for k := range trials {
				st.reseed(e.TrialSeed(k))
				res, err := e.runTrial(gctx, st, k, fraction, tmax, nil, "")
				if err != nil {
					return fmt.Errorf("%s: trial %d: %w", methodAggregate, k, err)
				}
				results[k] = res

				mu.Lock()
				done++
				e.opts.logger.Debug("trial progress", slog.Int("done", done), slog.Int("of", numTrials))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return summarize(results), nil
}

// summarize reduces results in trial order, so the floating-point sums do
// not depend on scheduling.
func summarize(results []TrialResult) Summary {
	s := Summary{Trials: len(results), Results: results}

	var sum, extinctT float64
	for _, r := range results {
		sum += float64(r.FinalInfected)
		if r.Extinct {
			s.Extinct++
			extinctT += r.FinalT
		}
	}
	s.Mean = sum / float64(len(results))
	if s.Extinct > 0 {
		s.MeanExtinctionTime = extinctT / float64(s.Extinct)
	}

	if len(results) > 1 {
		var ss float64
		for _, r := range results {
			d := float64(r.FinalInfected) - s.Mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / float64(len(results)-1))
	}

	return s
}
