package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssis/config"
	"github.com/katalvlaran/ssis/sis"
	"github.com/katalvlaran/ssis/store"
)

// asymptoticResult is the printed reduction of an aggregate run.
type asymptoticResult struct {
	RunID              string  `json:"run_id,omitempty"`
	Seed               int64   `json:"seed"`
	Trials             int     `json:"trials"`
	Mean               float64 `json:"mean"`
	StdDev             float64 `json:"stddev"`
	Extinct            int     `json:"extinct"`
	MeanExtinctionTime float64 `json:"mean_extinction_time"`
}

func newAsymptoticCmd() *cobra.Command {
	fs := newFlagSet()
	cmd := &cobra.Command{
		Use:   "asymptotic",
		Short: "Estimate the mean number of infected nodes at the horizon",
		Long: `Run many independent trials in parallel and report the mean final number
of infected nodes. Results do not depend on --workers for a fixed --seed.

Examples:
  ssis asymptotic --graph complete --n 200 --trials 500 --workers 8
  ssis asymptotic --graph regular --n 1000 --k 6 --seed 42 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fs.resolve(cmd)
			if err != nil {
				return err
			}
			return runAsymptotic(cmd, cfg)
		},
	}

	fs.addSimFlags(cmd.Flags())
	cmd.Flags().IntVar(&fs.src.Run.Trials, "trials", fs.src.Run.Trials, "Number of Monte-Carlo trials")
	cmd.Flags().StringVar(&fs.src.Run.Label, "label", fs.src.Run.Label, "Label recorded with the run")
	fs.bind("trials", func(d, s *config.Config) { d.Run.Trials = s.Run.Trials })
	fs.bind("label", func(d, s *config.Config) { d.Run.Label = s.Run.Label })

	return cmd
}

func runAsymptotic(cmd *cobra.Command, cfg *config.Config) (err error) {
	s, err := openSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	sum, err := s.engine.Aggregate(ctx, s.topo, cfg.Run.Fraction, cfg.Run.Trials, cfg.Run.TMax)
	if err != nil {
		return err
	}
	s.logger.Info("aggregate finished",
		slog.Int("trials", sum.Trials),
		slog.Float64("mean", sum.Mean),
		slog.Int("extinct", sum.Extinct))

	out := resultOf(cfg.Run.Seed, sum)
	if s.db != nil {
		rw, err := s.db.CreateRun(ctx, s.runInfo(store.KindAggregate, cfg.Run.Seed))
		if err != nil {
			return err
		}
		if err := s.db.SaveSummary(ctx, rw.ID(), sum); err != nil {
			return err
		}
		out.RunID = rw.ID()
	}

	w := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return encodeJSON(w, out)
	}

	fmt.Fprintf(w, "mean infected: %.3f (sd %.3f) over %d trials\n", out.Mean, out.StdDev, out.Trials)
	fmt.Fprintf(w, "extinct: %d", out.Extinct)
	if out.Extinct > 0 {
		fmt.Fprintf(w, " (mean extinction time %.3f)", out.MeanExtinctionTime)
	}
	fmt.Fprintln(w)
	if out.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", out.RunID)
	}

	return nil
}

func resultOf(seed int64, sum sis.Summary) asymptoticResult {
	return asymptoticResult{
		Seed:               seed,
		Trials:             sum.Trials,
		Mean:               sum.Mean,
		StdDev:             sum.StdDev,
		Extinct:            sum.Extinct,
		MeanExtinctionTime: sum.MeanExtinctionTime,
	}
}
