package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/recognizer"
)

var seedScenario string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo data on the backend and load it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scenario, err := dashboard.ParseScenario(seedScenario)
		if err != nil {
			return err
		}

		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		app, err := newApplication(cmd.Context(), cfg, log, recognizer.Unsupported{})
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.loader.Seed(cmd.Context(), scenario); err != nil {
			return err
		}

		snap := app.loader.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scenario:  %s\n", snap.Scenario)
		fmt.Fprintf(out, "companies: %d\n", len(snap.Companies))
		if snap.Company != nil {
			fmt.Fprintf(out, "selected:  %s (%s)\n", snap.Company.RazonSocial, snap.Company.RFC)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedScenario, "scenario", "s", "", "seed a single scenario (A, B or C); all when empty")
}
