package sis_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssis/logging"
	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
)

// countingObserver counts events and trials from many goroutines.
type countingObserver struct {
	events atomic.Int64
	trials atomic.Int64
}

func (o *countingObserver) ObserveEvent(sis.Event)       { o.events.Add(1) }
func (o *countingObserver) ObserveTrial(sis.TrialResult) { o.trials.Add(1) }

func TestRunSingleTrial_SnapshotCadence(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(30))
	cfg := sis.Config{T1: 1, T2: 2, Lambda: 1, RecoveryRate: 1, InfectionPropensity: sis.Propensity(0.1), SnapshotEvery: 7}
	eng, err := sis.New(cfg, sis.WithSeed(21))
	require.NoError(t, err)
	st, err := eng.NewState(topo, 0)
	require.NoError(t, err)

	var snaps []sis.Snapshot
	sink := sis.SinkFunc(func(s sis.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	res, err := eng.RunSingleTrial(context.Background(), st, 0.2, 15, sink, "Cont")
	require.NoError(t, err)

	require.Equal(t, 6, res.Seeded)
	require.Positive(t, res.Events)
	require.Equal(t, (res.Events+6)/7, res.Snapshots, "first event, then every 7th")
	require.Len(t, snaps, res.Snapshots)
	require.True(t, res.FinalT >= 15 || res.Extinct)
	require.Equal(t, res.FinalInfected == 0, res.Extinct)

	require.Zero(t, snaps[0].T, "the first row is stamped with the clock before the first event")
	require.InDelta(t, 6.0/30, snaps[0].Fraction, 1.0/30+1e-12, "one transition away from the seeded 6/30")
	for i, s := range snaps {
		require.Equal(t, "Cont", s.Label)
		require.Less(t, s.T, 15.0, "pre-event clocks stay below the horizon")
		require.GreaterOrEqual(t, s.Fraction, 0.0)
		require.LessOrEqual(t, s.Fraction, 1.0)
		if i > 0 {
			require.Greater(t, s.T, snaps[i-1].T)
		}
	}
}

func TestRunSingleTrial_ZeroHorizon(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(5))
	eng, err := sis.New(baseConfig())
	require.NoError(t, err)
	st, err := eng.NewState(topo, 0)
	require.NoError(t, err)

	res, err := eng.RunSingleTrial(context.Background(), st, 0.4, 0, nil, "x")
	require.NoError(t, err)
	require.Zero(t, res.Events)
	require.Equal(t, 2, res.FinalInfected)
	require.False(t, res.Extinct)
}

func TestRunSingleTrial_Errors(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(5))
	eng, err := sis.New(baseConfig())
	require.NoError(t, err)
	st, err := eng.NewState(topo, 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.RunSingleTrial(ctx, nil, 0.1, 1, nil, "")
	require.ErrorIs(t, err, sis.ErrConfiguration)
	_, err = eng.RunSingleTrial(ctx, st, 0.1, -1, nil, "")
	require.ErrorIs(t, err, sis.ErrConfiguration)
	_, err = eng.RunSingleTrial(ctx, st, -1, 1, nil, "")
	require.ErrorIs(t, err, sis.ErrConfiguration)

	boom := errors.New("disk full")
	_, err = eng.RunSingleTrial(ctx, st, 1, 100, sis.SinkFunc(func(sis.Snapshot) error { return boom }), "")
	require.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = eng.RunSingleTrial(cancelled, st, 1, 100, nil, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunSingleTrial_WritesTSV(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(20))
	eng, err := sis.New(sis.Config{T1: 1, T2: 2, Lambda: 1, RecoveryRate: 1, SnapshotEvery: 1}, sis.WithSeed(4))
	require.NoError(t, err)
	st, err := eng.NewState(topo, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := sis.NewTSVSink(&buf)
	res, err := eng.RunSingleTrial(context.Background(), st, 0.1, 5, sink, "Osci")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "model\ttime\ti", lines[0])
	require.Len(t, lines, res.Events+1)
	require.True(t, strings.HasPrefix(lines[1], "Osci\t0.000\t"), lines[1])
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 3)
		require.Equal(t, "Osci", fields[0])
	}
}

// With R0 = 199·0.001 well below one, a single seed on K_200 dies out.
func TestAggregate_SubcriticalGoesExtinct(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(200))
	eng, err := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2, RecoveryRate: 1, InfectionPropensity: sis.Propensity(0.001)},
		sis.WithSeed(11), sis.WithWorkers(4))
	require.NoError(t, err)

	sum, err := eng.Aggregate(context.Background(), topo, 0, 40, 1e4)
	require.NoError(t, err)
	require.Equal(t, 40, sum.Trials)
	require.Equal(t, 40, sum.Extinct)
	require.Zero(t, sum.Mean)
	require.Zero(t, sum.StdDev)
	require.Positive(t, sum.MeanExtinctionTime)
}

// With R0 ≈ 5 the epidemic settles near N·(1 − 1/R0).
func TestGetAsymptotic_Supercritical(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(50))
	eng, err := sis.New(sis.Config{T1: 10, T2: 20, Lambda: 2, RecoveryRate: 1, InfectionPropensity: sis.Propensity(0.1)},
		sis.WithSeed(12), sis.WithWorkers(3))
	require.NoError(t, err)

	mean, err := eng.GetAsymptoticNumberOfInfectedNodes(context.Background(), topo, 0.5, 20, 20)
	require.NoError(t, err)
	require.Greater(t, mean, 25.0)
	require.Less(t, mean, 50.0)
}

func TestAggregate_IndependentOfWorkerCount(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.KRegular(40, 4, 5))
	cfg := sis.Config{T1: 3, T2: 6, Lambda: 0.5, DLambda: 1, RecoveryRate: 1, Mode: sis.ModeSeasonal}

	run := func(workers int) sis.Summary {
		eng, err := sis.New(cfg, sis.WithSeed(77), sis.WithWorkers(workers))
		require.NoError(t, err)
		sum, err := eng.Aggregate(context.Background(), topo, 0.1, 24, 30)
		require.NoError(t, err)
		return sum
	}

	one := run(1)
	require.Equal(t, one, run(4))
	require.Equal(t, one, run(24))

	eng, err := sis.New(cfg, sis.WithSeed(78))
	require.NoError(t, err)
	other, err := eng.Aggregate(context.Background(), topo, 0.1, 24, 30)
	require.NoError(t, err)
	require.NotEqual(t, one.Results, other.Results)
}

func TestAggregate_ObserverAndLogger(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	var logs bytes.Buffer
	topo := mustTopology(t)(network.Complete(12))
	eng, err := sis.New(baseConfig(),
		sis.WithWorkers(4), sis.WithObserver(obs), sis.WithLogger(logging.NewLogger("debug", &logs)))
	require.NoError(t, err)

	sum, err := eng.Aggregate(context.Background(), topo, 0.25, 10, 5)
	require.NoError(t, err)

	events := 0
	for i, r := range sum.Results {
		require.Equal(t, i, r.Trial)
		events += r.Events
	}
	require.EqualValues(t, 10, obs.trials.Load())
	require.EqualValues(t, events, obs.events.Load())
	require.Contains(t, logs.String(), "trial finished")
}

func TestAggregate_Errors(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.Complete(3))
	eng, err := sis.New(baseConfig(), sis.WithWorkers(2))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Aggregate(ctx, nil, 0.1, 3, 1)
	require.ErrorIs(t, err, sis.ErrConfiguration)
	_, err = eng.Aggregate(ctx, topo, 0.1, 0, 1)
	require.ErrorIs(t, err, sis.ErrConfiguration)
	_, err = eng.GetAsymptoticNumberOfInfectedNodes(ctx, topo, -2, 3, 1)
	require.ErrorIs(t, err, sis.ErrConfiguration)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = eng.Aggregate(cancelled, topo, 0.1, 5, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptions_PanicOnMeaninglessInput(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { sis.WithWorkers(0) })
	require.Panics(t, func() { sis.WithLogger(nil) })
	require.Panics(t, func() { sis.WithObserver(nil) })
}

func TestWithSeed_ZeroSelectsDefault(t *testing.T) {
	t.Parallel()

	a, err := sis.New(baseConfig(), sis.WithSeed(0))
	require.NoError(t, err)
	b, err := sis.New(baseConfig())
	require.NoError(t, err)
	require.Equal(t, a.Seed(), b.Seed())
	require.Equal(t, a.TrialSeed(3), b.TrialSeed(3))
	require.NotEqual(t, a.TrialSeed(3), a.TrialSeed(4))
}

// Trial k of Aggregate replays exactly what a standalone trial on
// NewState(topo, k) produces.
func TestAggregate_MatchesStandaloneTrials(t *testing.T) {
	t.Parallel()

	topo := mustTopology(t)(network.ErdosRenyi(50, 0.1, 4))
	eng, err := sis.New(sis.Config{T1: 1, T2: 3, Lambda: 1, RecoveryRate: 1, InfectionPropensity: sis.Propensity(0.4)},
		sis.WithSeed(31), sis.WithWorkers(2))
	require.NoError(t, err)

	sum, err := eng.Aggregate(context.Background(), topo, 0.1, 5, 4)
	require.NoError(t, err)
	for k, got := range sum.Results {
		st, err := eng.NewState(topo, k)
		require.NoError(t, err)
		want, err := eng.RunSingleTrial(context.Background(), st, 0.1, 4, nil, "")
		require.NoError(t, err)
		want.Trial = k
		require.Equal(t, want, got, "trial %d", k)
	}
}
