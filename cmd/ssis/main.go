// Command ssis runs seasonal SIS epidemic simulations on contact networks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ssis",
		Short: "Seasonal SIS stochastic simulation",
		Long: `ssis simulates a Susceptible-Infected-Susceptible epidemic on a contact
network with an exact event-driven algorithm. Transmissibility may follow a
periodic two-phase seasonal signal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newAsymptoticCmd(),
		newProfileCmd(),
		newRunsCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ssis version %s\n", version)
		},
	}
}
