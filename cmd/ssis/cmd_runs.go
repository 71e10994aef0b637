package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssis/config"
	"github.com/katalvlaran/ssis/sis"
	"github.com/katalvlaran/ssis/store"
)

var errNoDatabase = errors.New("no database: set --db, output.db or SSIS_DB")

// runEntry is the JSON form of a stored run.
type runEntry struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Label     string          `json:"label,omitempty"`
	Graph     string          `json:"graph"`
	Nodes     int             `json:"nodes"`
	Seed      int64           `json:"seed"`
	Mode      string          `json:"mode"`
	CreatedAt string          `json:"created_at"`
	Summary   *summaryEntry   `json:"summary,omitempty"`
	Snapshots []snapshotEntry `json:"snapshots,omitempty"`
}

type summaryEntry struct {
	Trials             int     `json:"trials"`
	Mean               float64 `json:"mean"`
	StdDev             float64 `json:"stddev"`
	Extinct            int     `json:"extinct"`
	MeanExtinctionTime float64 `json:"mean_extinction_time"`
}

type snapshotEntry struct {
	Label    string  `json:"label"`
	T        float64 `json:"t"`
	Fraction float64 `json:"fraction"`
}

func entryOf(info store.RunInfo) runEntry {
	return runEntry{
		ID:        info.ID,
		Kind:      info.Kind,
		Label:     info.Label,
		Graph:     info.Graph,
		Nodes:     info.Nodes,
		Seed:      info.Seed,
		Mode:      info.Config.Mode.String(),
		CreatedAt: info.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs recorded in a SQLite database",
		Long: `List and show runs written by 'ssis run --db' and 'ssis asymptotic --db'.

Examples:
  ssis runs list --db runs.db
  ssis runs show 3f0c9a52-... --db runs.db --json`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
	)

	return cmd
}

func newRunsListCmd() *cobra.Command {
	fs := newFlagSet()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			db, path, err := openRunStore(cmd, fs)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); err == nil {
					err = cerr
				}
			}()

			runs, err := db.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			w := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				entries := make([]runEntry, 0, len(runs))
				for _, info := range runs {
					entries = append(entries, entryOf(info))
				}
				return encodeJSON(w, map[string]any{
					"runs":        entries,
					"total_count": len(entries),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintf(w, "No runs in %s\n", path)
				return nil
			}
			fmt.Fprintf(w, "Runs in %s:\n", path)
			for _, info := range runs {
				fmt.Fprintf(w, "  %s  %s  %-9s  %s  %d nodes  seed %d",
					info.CreatedAt.Local().Format("2006-01-02 15:04"),
					info.ID,
					info.Kind,
					info.Graph,
					info.Nodes,
					info.Seed,
				)
				if info.Label != "" {
					fmt.Fprintf(w, "  %s", info.Label)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "Total: %d runs\n", len(runs))
			return nil
		},
	}

	addDBFlag(fs, cmd)
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	fs := newFlagSet()
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run with its summary and snapshots",
		Long: `Show the parameters of a stored run, its summary when it is an aggregate
run, and its snapshots in the same tab-separated form 'ssis run' prints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			db, _, err := openRunStore(cmd, fs)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); err == nil {
					err = cerr
				}
			}()

			ctx := cmd.Context()
			info, err := db.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			entry := entryOf(info)

			sum, err := db.Summary(ctx, info.ID)
			switch {
			case errors.Is(err, store.ErrRunNotFound):
				// trial runs carry no summary
			case err != nil:
				return err
			default:
				entry.Summary = &summaryEntry{
					Trials:             sum.Trials,
					Mean:               sum.Mean,
					StdDev:             sum.StdDev,
					Extinct:            sum.Extinct,
					MeanExtinctionTime: sum.MeanExtinctionTime,
				}
			}

			snaps, err := db.Snapshots(ctx, info.ID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				for _, s := range snaps {
					entry.Snapshots = append(entry.Snapshots, snapshotEntry{Label: s.Label, T: s.T, Fraction: s.Fraction})
				}
				return encodeJSON(w, entry)
			}

			fmt.Fprintf(w, "Run %s\n", entry.ID)
			fmt.Fprintf(w, "  Kind:    %s\n", entry.Kind)
			if entry.Label != "" {
				fmt.Fprintf(w, "  Label:   %s\n", entry.Label)
			}
			fmt.Fprintf(w, "  Graph:   %s (%d nodes)\n", entry.Graph, entry.Nodes)
			fmt.Fprintf(w, "  Mode:    %s\n", entry.Mode)
			fmt.Fprintf(w, "  Seed:    %d\n", entry.Seed)
			fmt.Fprintf(w, "  Created: %s\n", entry.CreatedAt)
			if s := entry.Summary; s != nil {
				fmt.Fprintf(w, "  Summary: mean infected %.3f (sd %.3f) over %d trials, %d extinct\n",
					s.Mean, s.StdDev, s.Trials, s.Extinct)
			}
			if len(snaps) == 0 {
				return nil
			}

			fmt.Fprintf(w, "  Snapshots: %d\n", len(snaps))
			tsv := sis.NewTSVSink(w)
			for _, s := range snaps {
				if err := tsv.WriteSnapshot(s); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addDBFlag(fs, cmd)
	return cmd
}

// addDBFlag registers --db on a read-only runs command.
func addDBFlag(fs *flagSet, cmd *cobra.Command) {
	cmd.Flags().StringVar(&fs.src.Output.DB, "db", fs.src.Output.DB, "SQLite file holding the runs")
	fs.bind("db", func(d, s *config.Config) { d.Output.DB = s.Output.DB })
}

// openRunStore resolves the database path from flags, file and environment
// and opens it.
func openRunStore(cmd *cobra.Command, fs *flagSet) (*store.SQLite, string, error) {
	cfg, err := fs.resolve(cmd)
	if err != nil {
		return nil, "", err
	}
	if cfg.Output.DB == "" {
		return nil, "", errNoDatabase
	}
	if _, err := os.Stat(cfg.Output.DB); err != nil {
		return nil, "", fmt.Errorf("failed to open runs database: %w", err)
	}

	db, err := store.Open(cmd.Context(), cfg.Output.DB)
	if err != nil {
		return nil, "", err
	}
	return db, cfg.Output.DB, nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
