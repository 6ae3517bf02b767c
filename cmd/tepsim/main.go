package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tepsim",
		Short: "Chemical plant flowsheet simulator",
		Long: `tepsim runs discrete-time simulations of chemical plant flowsheets.

A settings directory describes the plant: component and reaction
property records, the unit operation graph with its streams, and the
run parameters. Sensor readings carry reproducible measurement noise
and are recorded step by step.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("settings", "settings", "Settings directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newValidateCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
