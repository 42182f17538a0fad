package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mentorra/mentorra/internal/config"
	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/internal/plan"
	"github.com/mentorra/mentorra/internal/state"
	"github.com/mentorra/mentorra/pkg/models"
)

var (
	runsLimit int
	runsPurge bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Browse recorded advisory runs",
	Long: `List recent advisory runs, or show one run in full.

Without arguments, lists the most recent runs. With a run id, replays
that run: the routed panel, any mentor failures, and the synthesized
plan as it was delivered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := state.OpenGlobal()
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("preparing run history: %w", err)
		}

		if runsPurge {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
			n, err := db.PurgeOldRuns(retention)
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d run(s) older than %d days\n", n, cfg.Storage.RetentionDays)
			if len(args) == 0 {
				return nil
			}
		}

		if len(args) == 1 {
			return showRun(db, args[0])
		}
		return listRuns(db)
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().BoolVar(&runsPurge, "purge", false, "Delete runs older than the configured retention")
}

func listRuns(db *state.DB) error {
	summaries, err := db.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No recorded runs yet. Start one with 'mentorra plan'.")
		return nil
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	for _, s := range summaries {
		switch s.Phase {
		case string(models.PhaseDone):
			green.Print("done   ")
		case string(models.PhaseFailed):
			red.Print("failed ")
		default:
			fmt.Printf("%-7s", s.Phase)
		}
		fmt.Printf(" %s  %s", s.ID, truncate(s.Idea, 48))
		dim.Printf("  [%s]", s.Stage)
		if s.Grounded {
			dim.Print("  grounded")
		}
		if s.ErrorKind != "" {
			red.Printf("  %s", s.ErrorKind)
		}
		dim.Printf("  %s\n", s.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func showRun(db *state.DB, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Run %s  (%s)\n", run.ID, run.Phase)
	fmt.Printf("Idea:    %s\n", run.Context.Idea)
	fmt.Printf("Stage:   %s\n", run.Context.Stage)
	if run.Context.Industry != "" {
		fmt.Printf("Market:  %s\n", run.Context.Industry)
	}
	fmt.Printf("Started: %s\n", run.StartedAt.Local().Format(time.RFC1123))

	if run.Decision != nil {
		fmt.Printf("\nPanel: ")
		for i, sel := range run.Decision.Selected {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(sel.PersonaID)
		}
		fmt.Println()
	}

	if len(run.Failures) > 0 {
		color.New(color.FgRed).Println("\nMentor failures:")
		for _, f := range run.Failures {
			fmt.Printf("  - %s: %s", f.PersonaID, f.Kind)
			if f.Detail != "" {
				fmt.Printf(" (%s)", f.Detail)
			}
			fmt.Println()
		}
	}

	if run.Plan != nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		registry, err := persona.Load(cfg.Paths.Personas)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(plan.Render(run.Plan, registry))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
