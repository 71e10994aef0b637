package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssis/seasonal"
)

func newProfileCmd() *cobra.Command {
	fs := newFlagSet()
	var (
		tmax float64
		step float64
		out  string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Tabulate the seasonal transmissibility and its integral",
		Long: `Write "t l L" rows sampling the transmissibility l(t) and its integral
L(t) from 0 up to --tmax.

Example:
  ssis profile --t1 10 --t2 20 --lambda 2 --dlambda 6 --tmax 60 --step 0.5`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := fs.resolve(cmd)
			if err != nil {
				return err
			}
			m := cfg.Model
			r, err := seasonal.New(m.T1, m.T2, m.Lambda, m.DLambda)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOut(); err == nil {
					err = cerr
				}
			}()

			return r.WriteProfile(w, tmax, step)
		},
	}

	fs.addModelFlags(cmd.Flags())
	cmd.Flags().Float64Var(&tmax, "tmax", 100, "Upper end of the table (exclusive)")
	cmd.Flags().Float64Var(&step, "step", 0.1, "Sampling step")
	cmd.Flags().StringVar(&out, "out", "-", "Output file (- for stdout)")

	return cmd
}
