package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mentorra",
	Short: "Founder advisory board orchestrator",
	Long: `Mentorra turns unstructured founder input into one decisive 30-day plan.

It routes your context to a bounded panel of mentor personas, invokes them
concurrently with independent failure domains, validates every brief against
a strict five-section contract, optionally grounds the request with fetched
market data, and synthesizes the validated briefs into a single ranked plan.

Core capabilities:
- Routes your idea, stage, and constraints to the best-matching mentors
- Runs mentor invocations in parallel; one slow mentor never blocks the rest
- Resolves conflicting advice by mentor priority, keeping the tradeoff visible
- Grounds the plan in competitor and pricing facts when a market scan succeeds
- Records every run locally for later review`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
