package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ssis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInitSchema_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssis.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	version, err := getSchemaVersion(ctx, s.db)
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, version)

	var rows int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestCreateRunAndSnapshots(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	cfg := sis.Config{T1: 10, T2: 20, Lambda: 2, DLambda: 6, RecoveryRate: 2, Mode: sis.ModeSeasonal}
	w, err := s.CreateRun(ctx, RunInfo{Kind: KindTrial, Label: "Osci", Graph: "complete(200)", Nodes: 200, Seed: 42, Config: cfg})
	require.NoError(t, err)
	_, err = uuid.Parse(w.ID())
	require.NoError(t, err, "generated IDs are UUIDs")

	want := make([]sis.Snapshot, 0, snapshotBatch+3)
	for i := 0; i < snapshotBatch+3; i++ {
		snap := sis.Snapshot{Label: "Osci", T: float64(i) * 0.5, Fraction: float64(i%10) / 10}
		want = append(want, snap)
		require.NoError(t, w.WriteSnapshot(snap))
	}

	got, err := s.Snapshots(ctx, w.ID())
	require.NoError(t, err)
	require.Len(t, got, snapshotBatch, "a full batch is flushed eagerly")

	require.NoError(t, w.Flush())
	require.NoError(t, w.Flush())
	got, err = s.Snapshots(ctx, w.ID())
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := s.GetRun(ctx, w.ID())
	require.NoError(t, err)
	require.Equal(t, "Osci", info.Label)
	require.Equal(t, KindTrial, info.Kind)
	require.Equal(t, 200, info.Nodes)
	require.Equal(t, int64(42), info.Seed)
	require.Equal(t, cfg, info.Config)
	require.False(t, info.CreatedAt.IsZero())
}

func TestSummaryRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	w, err := s.CreateRun(ctx, RunInfo{ID: "fixed-id", Kind: KindAggregate, Label: "asym", Graph: "lattice(10x10)", Nodes: 100})
	require.NoError(t, err)
	require.Equal(t, "fixed-id", w.ID())

	sum := sis.Summary{Trials: 20, Mean: 12.5, StdDev: 3.25, Extinct: 4, MeanExtinctionTime: 7.75}
	require.NoError(t, s.SaveSummary(ctx, w.ID(), sum))
	sum.Mean = 13
	require.NoError(t, s.SaveSummary(ctx, w.ID(), sum), "summaries are replaceable")

	got, err := s.Summary(ctx, w.ID())
	require.NoError(t, err)
	require.Equal(t, sum, got)
}

func TestNotFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.Summary(ctx, "nope")
	require.ErrorIs(t, err, ErrRunNotFound)

	snaps, err := s.Snapshots(ctx, "nope")
	require.NoError(t, err)
	require.Empty(t, snaps)
}

func TestDuplicateRunID(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.CreateRun(ctx, RunInfo{ID: "dup", Kind: KindTrial})
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, RunInfo{ID: "dup", Kind: KindTrial})
	require.Error(t, err)
}

func TestListRuns(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, label := range []string{"a", "b", "c"} {
		_, err := s.CreateRun(ctx, RunInfo{Kind: KindTrial, Label: label})
		require.NoError(t, err)
	}
	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func TestRunWriterAsTrialSink(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	topo, err := network.Complete(25)
	require.NoError(t, err)
	eng, err := sis.New(sis.Config{T1: 1, T2: 2, Lambda: 1, RecoveryRate: 1, SnapshotEvery: 5}, sis.WithSeed(2))
	require.NoError(t, err)
	st, err := eng.NewState(topo, 0)
	require.NoError(t, err)

	w, err := s.CreateRun(ctx, RunInfo{Kind: KindTrial, Label: "Cont", Nodes: topo.VertexCount(), Config: eng.Config()})
	require.NoError(t, err)
	res, err := eng.RunSingleTrial(ctx, st, 0.2, 10, w, "Cont")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	snaps, err := s.Snapshots(ctx, w.ID())
	require.NoError(t, err)
	require.Len(t, snaps, res.Snapshots)
	require.Zero(t, snaps[0].T)
}

func TestCascadeDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	w, err := s.CreateRun(ctx, RunInfo{Kind: KindTrial})
	require.NoError(t, err)
	require.NoError(t, w.WriteSnapshot(sis.Snapshot{Label: "x", T: 1}))
	require.NoError(t, w.Flush())

	_, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, w.ID())
	require.NoError(t, err)

	var n int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE run_id = ?`, w.ID()).Scan(&n)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NotErrorIs(t, err, sql.ErrNoRows)
}
