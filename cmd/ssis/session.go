package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssis/config"
	"github.com/katalvlaran/ssis/metrics"
	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
	"github.com/katalvlaran/ssis/store"
)

// session holds everything a simulation command needs: the engine, the
// topology and the optional store and metrics endpoint.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	engine    *sis.Engine
	topo      *network.Topology
	collector *metrics.Collector
	db        *store.SQLite

	stopMetrics context.CancelFunc
	metricsDone chan error
}

func openSession(cmd *cobra.Command, cfg *config.Config) (*session, error) {
	logger := newLogger(cmd, cfg)
	resolveSeed(cfg, logger)

	topo, err := cfg.BuildTopology()
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}
	simCfg, err := cfg.SIS()
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	eng, err := sis.New(simCfg,
		sis.WithSeed(cfg.Run.Seed),
		sis.WithWorkers(cfg.Run.Workers),
		sis.WithLogger(logger),
		sis.WithObserver(collector),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("topology ready",
		slog.String("graph", graphDescription(cfg.Graph)),
		slog.Int("nodes", topo.VertexCount()),
		slog.Int("contacts", topo.EdgeCount()),
		slog.Bool("directed", topo.Directed()),
		slog.String("mode", simCfg.Mode.String()))

	s := &session{
		cfg:       cfg,
		logger:    logger,
		engine:    eng,
		topo:      topo,
		collector: collector,
	}

	if cfg.Output.DB != "" {
		db, err := store.Open(cmd.Context(), cfg.Output.DB)
		if err != nil {
			return nil, err
		}
		s.db = db
	}

	if cfg.Metrics.Addr != "" {
		ctx, cancel := context.WithCancel(cmd.Context())
		srv := metrics.NewServer(collector, cfg.Metrics.Addr, logger)
		s.stopMetrics = cancel
		s.metricsDone = make(chan error, 1)
		go func() { s.metricsDone <- srv.ListenAndServe(ctx) }()
	}

	return s, nil
}

// runInfo describes a run of the given kind for the store.
func (s *session) runInfo(kind string, seed int64) store.RunInfo {
	return store.RunInfo{
		Kind:   kind,
		Label:  s.cfg.Run.Label,
		Graph:  graphDescription(s.cfg.Graph),
		Nodes:  s.topo.VertexCount(),
		Seed:   seed,
		Config: s.engine.Config(),
	}
}

// Close stops the metrics endpoint and closes the store.
func (s *session) Close() error {
	var errs []error
	if s.stopMetrics != nil {
		s.stopMetrics()
		if err := <-s.metricsDone; err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
