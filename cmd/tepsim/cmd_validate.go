package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tepsim/internal/config"
	"tepsim/internal/logging"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a settings directory without running it",
		Long: `Assemble the plant from the settings directory and report what was
built. Schema mismatches in property records, broken stream endpoints,
bad calculation orders and unbuildable unit operations all surface
here instead of mid-run.

Examples:
  tepsim validate
  tepsim validate --settings plants/baseline --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("settings")
			jsonOut, _ := cmd.Flags().GetBool("json")

			settings, err := config.LoadSimulationSettings(dir)
			if err != nil {
				return err
			}
			log := logging.NewLogger(settings.Logging.Level, os.Stderr)

			plant, err := config.LoadSettings(dir, log)
			if err != nil {
				return fmt.Errorf("settings directory %s is not valid: %w", dir, err)
			}
			defer plant.Close()

			total, err := plant.Runner.TotalSteps()
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"valid":       true,
					"components":  plant.Catalog.ComponentNames(),
					"reactions":   plant.Catalog.ReactionNames(),
					"units":       plant.Sheet.UnitIDs(),
					"sensors":     plant.Sheet.SensorIDs(),
					"order":       plant.Sheet.EvaluationOrder(),
					"total_steps": total,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Settings directory %s is valid.\n\n", dir)
			fmt.Fprintf(cmd.OutOrStdout(), "Components: %d\n", len(plant.Catalog.ComponentNames()))
			fmt.Fprintf(cmd.OutOrStdout(), "Reactions:  %d\n", len(plant.Catalog.ReactionNames()))
			fmt.Fprintf(cmd.OutOrStdout(), "Units:      %d\n", len(plant.Sheet.UnitIDs()))
			fmt.Fprintf(cmd.OutOrStdout(), "Sensors:    %d\n", len(plant.Sheet.SensorIDs()))
			fmt.Fprintf(cmd.OutOrStdout(), "Steps:      %d\n", total)
			return nil
		},
	}
}
