package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	require.Equal(t, GraphComplete, cfg.Graph.Kind)
	require.Equal(t, 200, cfg.Graph.N)
	require.Equal(t, 10.0, cfg.Model.T1)
	require.Equal(t, 20.0, cfg.Model.T2)
	require.Equal(t, 10.0, cfg.Model.Mu)
	require.Equal(t, "constant", cfg.Model.Mode)
	require.Equal(t, 1.0, cfg.Run.Fraction)
	require.Equal(t, 100.0, cfg.Run.TMax)
	require.Equal(t, "Cont", cfg.Run.Label)
	require.Equal(t, "-", cfg.Output.Path)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssis.yaml")
	content := `
model:
  t1: 5
  t2: 12
  lambda: 1.5
  dlambda: 3
  mu: 2
  mode: seasonal
  snapshot_every: 10
graph:
  kind: lattice
  lx: 4
  ly: 6
run:
  fraction: 0.1
  tmax: 50
  trials: 8
  workers: 2
  label: Osci
  seed: 99
logging:
  level: debug
  format: json
metrics:
  addr: ":9091"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 12.0, cfg.Model.T2)
	require.Equal(t, "seasonal", cfg.Model.Mode)
	require.Equal(t, GraphLattice, cfg.Graph.Kind)
	require.Equal(t, 200, cfg.Graph.N, "unset keys keep their defaults")
	require.Equal(t, 1, cfg.Run.Runs)
	require.Equal(t, "Osci", cfg.Run.Label)
	require.Equal(t, ":9091", cfg.Metrics.Addr)

	sc, err := cfg.SIS()
	require.NoError(t, err)
	require.Equal(t, sis.ModeSeasonal, sc.Mode)
	require.Equal(t, 2.0, sc.RecoveryRate)
	require.Equal(t, 10, sc.SnapshotEvery)

	topo, err := cfg.BuildTopology()
	require.NoError(t, err)
	require.Equal(t, 24, topo.VertexCount())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SSIS_LOG_LEVEL", "trace")
	t.Setenv("SSIS_WORKERS", "6")
	t.Setenv("SSIS_SEED", "1234")
	t.Setenv("SSIS_DB", "runs.sqlite")
	t.Setenv("SSIS_METRICS_ADDR", "localhost:9100")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "trace", cfg.Logging.Level)
	require.Equal(t, 6, cfg.Run.Workers)
	require.Equal(t, int64(1234), cfg.Run.Seed)
	require.Equal(t, "runs.sqlite", cfg.Output.DB)
	require.Equal(t, "localhost:9100", cfg.Metrics.Addr)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"t2 not above t1", func(c *Config) { c.Model.T2 = c.Model.T1 }},
		{"negative lambda", func(c *Config) { c.Model.Lambda = -1 }},
		{"negative boosted rate", func(c *Config) { c.Model.DLambda = -5 }},
		{"negative mu", func(c *Config) { c.Model.Mu = -1 }},
		{"unknown mode", func(c *Config) { c.Model.Mode = "sir" }},
		{"unknown graph", func(c *Config) { c.Graph.Kind = "star" }},
		{"missing graph kind", func(c *Config) { c.Graph.Kind = "" }},
		{"probability above one", func(c *Config) { c.Graph.P = 1.5 }},
		{"empty lattice", func(c *Config) { c.Graph.Kind = GraphLattice; c.Graph.LX = 0 }},
		{"odd regular", func(c *Config) { c.Graph.Kind = GraphRegular; c.Graph.N = 5; c.Graph.K = 3 }},
		{"directed regular", func(c *Config) {
			c.Graph = GraphConfig{Kind: GraphRegular, N: 6, K: 2, Directed: true}
		}},
		{"negative infection propensity", func(c *Config) { c.Model.InfectionPropensity = sis.Propensity(-1) }},
		{"empty complete", func(c *Config) { c.Graph.N = 0 }},
		{"zero runs", func(c *Config) { c.Run.Runs = 0 }},
		{"zero workers", func(c *Config) { c.Run.Workers = 0 }},
		{"negative tmax", func(c *Config) { c.Run.TMax = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "nine thousand" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestBuildTopology_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		graph GraphConfig
		wantN int
	}{
		{"complete", GraphConfig{Kind: GraphComplete, N: 7}, 7},
		{"lattice", GraphConfig{Kind: GraphLattice, LX: 3, LY: 2}, 6},
		{"random", GraphConfig{Kind: GraphRandom, N: 30, P: 0.2, Seed: 4}, 30},
		{"regular", GraphConfig{Kind: GraphRegular, N: 12, K: 3, Seed: 4}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Graph = tt.graph
			topo, err := cfg.BuildTopology()
			require.NoError(t, err)
			require.Equal(t, tt.wantN, topo.VertexCount())
		})
	}

	cfg := Default()
	cfg.Graph.Kind = "star"
	_, err := cfg.BuildTopology()
	require.ErrorIs(t, err, ErrInvalid)
}

func TestBuildTopology_Directed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directed.yaml")
	content := `
graph:
  kind: complete
  n: 5
  directed: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.Graph.Directed)

	topo, err := cfg.BuildTopology()
	require.NoError(t, err)
	require.True(t, topo.Directed())
	require.Equal(t, 20, topo.EdgeCount())

	cfg.Graph.Directed = false
	undirected, err := cfg.BuildTopology()
	require.NoError(t, err)
	require.False(t, undirected.Directed())
	require.Equal(t, 20, undirected.EdgeCount(), "K5 has the same contacts either way")
}

func TestBuildTopology_SeedFallsBackToRunSeed(t *testing.T) {
	build := func(runSeed int64) *network.Topology {
		cfg := Default()
		cfg.Graph = GraphConfig{Kind: GraphRandom, N: 40, P: 0.1}
		cfg.Run.Seed = runSeed
		topo, err := cfg.BuildTopology()
		require.NoError(t, err)
		return topo
	}

	a, b := build(5), build(5)
	for i := 0; i < a.VertexCount(); i++ {
		require.Equal(t, a.Neighbors(i), b.Neighbors(i))
	}
}
