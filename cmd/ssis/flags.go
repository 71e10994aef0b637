package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/ssis/config"
	"github.com/katalvlaran/ssis/logging"
	"github.com/katalvlaran/ssis/sis"
)

// binding copies one flag's value from the flag-bound config into the
// effective config when the flag was set on the command line.
type binding func(dst, src *config.Config)

// flagSet binds command-line flags onto a scratch config. Values only
// reach the effective config for flags the user actually set, so file
// values survive unset flags.
type flagSet struct {
	src      *config.Config
	bindings map[string]binding

	// Optional propensities have no pointer flag type.
	pInf, pRec float64
}

func newFlagSet() *flagSet {
	return &flagSet{src: config.Default(), bindings: map[string]binding{}}
}

func (fs *flagSet) bind(name string, b binding) { fs.bindings[name] = b }

// addModelFlags registers the seasonal signal and rate flags.
func (fs *flagSet) addModelFlags(f *pflag.FlagSet) {
	m := &fs.src.Model
	f.Float64Var(&m.T1, "t1", m.T1, "Start of the boosted phase within a period")
	f.Float64Var(&m.T2, "t2", m.T2, "Period length")
	f.Float64Var(&m.Lambda, "lambda", m.Lambda, "Baseline transmissibility")
	f.Float64Var(&m.DLambda, "dlambda", m.DLambda, "Transmissibility boost during [t1, t2)")
	fs.bind("t1", func(d, s *config.Config) { d.Model.T1 = s.Model.T1 })
	fs.bind("t2", func(d, s *config.Config) { d.Model.T2 = s.Model.T2 })
	fs.bind("lambda", func(d, s *config.Config) { d.Model.Lambda = s.Model.Lambda })
	fs.bind("dlambda", func(d, s *config.Config) { d.Model.DLambda = s.Model.DLambda })
}

// addSimFlags registers the engine, topology and run flags.
func (fs *flagSet) addSimFlags(f *pflag.FlagSet) {
	fs.addModelFlags(f)

	m, g, r, o := &fs.src.Model, &fs.src.Graph, &fs.src.Run, &fs.src.Output
	f.Float64Var(&m.Mu, "mu", m.Mu, "Recovery rate (seasonal mode)")
	f.StringVar(&m.Mode, "mode", m.Mode, "Event generation: constant or seasonal")
	f.Float64Var(&fs.pInf, "p-inf", sis.DefaultInfectionPropensity, "Per-contact infection propensity (constant mode)")
	f.Float64Var(&fs.pRec, "p-rec", sis.DefaultRecoveryPropensity, "Per-node recovery propensity (constant mode)")
	f.IntVar(&m.SnapshotEvery, "snapshot-every", m.SnapshotEvery, "Snapshot interval in events (0 = 50)")

	f.StringVar(&g.Kind, "graph", g.Kind, "Topology: complete, lattice, random or regular")
	f.IntVar(&g.N, "n", g.N, "Number of nodes (complete, random, regular)")
	f.IntVar(&g.LX, "lx", g.LX, "Lattice rows")
	f.IntVar(&g.LY, "ly", g.LY, "Lattice columns")
	f.Float64Var(&g.P, "p", g.P, "Edge probability (random)")
	f.IntVar(&g.K, "k", g.K, "Degree (regular)")
	f.BoolVar(&g.Directed, "directed", g.Directed, "One-way contacts (not for regular)")

	f.Float64Var(&r.Fraction, "fraction", r.Fraction, "Initially infected fraction (at least one node)")
	f.Float64Var(&r.TMax, "tmax", r.TMax, "Simulation horizon")
	f.Int64Var(&r.Seed, "seed", r.Seed, "Root seed (0 = derive from the clock)")
	f.IntVar(&r.Workers, "workers", r.Workers, "Concurrent trials")
	f.StringVar(&o.DB, "db", o.DB, "SQLite file receiving snapshots and summaries")
	f.StringVar(&fs.src.Metrics.Addr, "metrics-addr", fs.src.Metrics.Addr, "Serve Prometheus metrics on this address")

	fs.bind("mu", func(d, s *config.Config) { d.Model.Mu = s.Model.Mu })
	fs.bind("mode", func(d, s *config.Config) { d.Model.Mode = s.Model.Mode })
	fs.bind("p-inf", func(d, _ *config.Config) { d.Model.InfectionPropensity = sis.Propensity(fs.pInf) })
	fs.bind("p-rec", func(d, _ *config.Config) { d.Model.RecoveryPropensity = sis.Propensity(fs.pRec) })
	fs.bind("snapshot-every", func(d, s *config.Config) { d.Model.SnapshotEvery = s.Model.SnapshotEvery })
	fs.bind("graph", func(d, s *config.Config) { d.Graph.Kind = s.Graph.Kind })
	fs.bind("n", func(d, s *config.Config) { d.Graph.N = s.Graph.N })
	fs.bind("lx", func(d, s *config.Config) { d.Graph.LX = s.Graph.LX })
	fs.bind("ly", func(d, s *config.Config) { d.Graph.LY = s.Graph.LY })
	fs.bind("p", func(d, s *config.Config) { d.Graph.P = s.Graph.P })
	fs.bind("k", func(d, s *config.Config) { d.Graph.K = s.Graph.K })
	fs.bind("directed", func(d, s *config.Config) { d.Graph.Directed = s.Graph.Directed })
	fs.bind("fraction", func(d, s *config.Config) { d.Run.Fraction = s.Run.Fraction })
	fs.bind("tmax", func(d, s *config.Config) { d.Run.TMax = s.Run.TMax })
	fs.bind("seed", func(d, s *config.Config) { d.Run.Seed = s.Run.Seed })
	fs.bind("workers", func(d, s *config.Config) { d.Run.Workers = s.Run.Workers })
	fs.bind("db", func(d, s *config.Config) { d.Output.DB = s.Output.DB })
	fs.bind("metrics-addr", func(d, s *config.Config) { d.Metrics.Addr = s.Metrics.Addr })
}

// resolve loads --config, applies the flags that were set and validates.
func (fs *flagSet) resolve(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		if b, ok := fs.bindings[f.Name]; ok {
			b(cfg, fs.src)
		}
	})
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger builds the command logger on stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// resolveSeed replaces a zero seed with a clock-derived one and logs the
// result so the run can be reproduced.
func resolveSeed(cfg *config.Config, logger *slog.Logger) {
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	logger.Info("seed", slog.Int64("seed", cfg.Run.Seed))
}

// openOutput returns the writer for path; "-" or "" is the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// graphDescription renders the topology section for run records.
func graphDescription(g config.GraphConfig) string {
	var desc string
	switch g.Kind {
	case config.GraphLattice:
		desc = fmt.Sprintf("lattice(%dx%d)", g.LX, g.LY)
	case config.GraphRandom:
		desc = fmt.Sprintf("random(n=%d,p=%g)", g.N, g.P)
	case config.GraphRegular:
		desc = fmt.Sprintf("regular(n=%d,k=%d)", g.N, g.K)
	default:
		desc = fmt.Sprintf("complete(%d)", g.N)
	}
	if g.Directed {
		desc = "directed " + desc
	}
	return desc
}
