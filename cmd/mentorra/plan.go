package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mentorra/mentorra/internal/agent"
	"github.com/mentorra/mentorra/internal/config"
	"github.com/mentorra/mentorra/internal/grounding"
	"github.com/mentorra/mentorra/internal/orchestrator"
	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/internal/plan"
	"github.com/mentorra/mentorra/internal/prompt"
	"github.com/mentorra/mentorra/internal/signal"
	"github.com/mentorra/mentorra/internal/state"
	"github.com/mentorra/mentorra/pkg/models"
)

var (
	planIdea            string
	planStage           string
	planIndustry        string
	planConstraints     []string
	planFile            string
	planPrior           string
	planMaxMentors      int
	planHeadless        bool
	planNoGrounding     bool
	planPartialOnCancel bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run your advisory board and produce a 30-day plan",
	Long: `Run the full advisory pipeline for one founder context.

Describe your situation with flags, or point --file at a YAML document:

  idea: "B2B SaaS for dental clinics"
  industry: healthcare
  stage: pre-revenue
  constraints:
    - solo founder
    - no budget for paid ads

The pipeline routes your context to the best-matching mentors, runs them
in parallel, validates every brief, and synthesizes one ranked plan. A
market scan runs alongside the mentors when grounding is enabled; its
failure never fails the run.

Stop an in-flight run from another terminal with 'mentorra stop'.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planIdea, "idea", "", "What you are building")
	planCmd.Flags().StringVar(&planStage, "stage", "idea", "Company stage: idea, pre-revenue, early-revenue, scaling")
	planCmd.Flags().StringVar(&planIndustry, "industry", "", "The market you operate in")
	planCmd.Flags().StringArrayVar(&planConstraints, "constraint", nil, "A constraint the plan must respect (repeatable)")
	planCmd.Flags().StringVar(&planFile, "file", "", "Founder context YAML file (overrides the context flags)")
	planCmd.Flags().StringVar(&planPrior, "prior", "", "Path to a previously generated plan, for continuity and diffing")
	planCmd.Flags().IntVar(&planMaxMentors, "max-mentors", 0, "Cap the mentor panel size (default from config)")
	planCmd.Flags().BoolVar(&planHeadless, "headless", false, "Log progress instead of showing the live board")
	planCmd.Flags().BoolVar(&planNoGrounding, "no-grounding", false, "Skip the market scan for this run")
	planCmd.Flags().BoolVar(&planPartialOnCancel, "partial-on-cancel", false, "Return a partial plan from completed briefs if the run is cancelled")
}

// contextDocument is the YAML shape accepted by --file.
type contextDocument struct {
	Idea        string   `yaml:"idea"`
	Industry    string   `yaml:"industry"`
	Stage       string   `yaml:"stage"`
	Constraints []string `yaml:"constraints"`
	PriorPlan   string   `yaml:"prior_plan"`
}

// founderContext assembles the run input from --file or the flags.
func founderContext() (models.FounderContext, error) {
	doc := contextDocument{
		Idea:        planIdea,
		Industry:    planIndustry,
		Stage:       planStage,
		Constraints: planConstraints,
		PriorPlan:   planPrior,
	}
	if planFile != "" {
		data, err := os.ReadFile(planFile)
		if err != nil {
			return models.FounderContext{}, fmt.Errorf("reading context file: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return models.FounderContext{}, fmt.Errorf("parsing context file: %w", err)
		}
		if planPrior != "" {
			doc.PriorPlan = planPrior
		}
	}

	stage, err := models.ParseStage(doc.Stage)
	if err != nil {
		return models.FounderContext{}, err
	}
	fc := models.FounderContext{
		Idea:          doc.Idea,
		Industry:      doc.Industry,
		Stage:         stage,
		Constraints:   doc.Constraints,
		PriorPlanPath: doc.PriorPlan,
	}
	return fc, fc.Validate()
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fc, err := founderContext()
	if err != nil {
		return err
	}

	registry, err := persona.Load(cfg.Paths.Personas)
	if err != nil {
		return err
	}
	library, err := prompt.Load(cfg.Paths.Prompts)
	if err != nil {
		return err
	}
	client, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	var fetcher orchestrator.GroundingFetcher
	if cfg.Grounding.Enabled && !planNoGrounding {
		fetcher = grounding.NewFetcher(grounding.Config{
			Endpoint:        cfg.Grounding.Endpoint,
			Timeout:         cfg.Grounding.Timeout,
			FreshnessWindow: cfg.Grounding.FreshnessWindow,
		})
	}

	// Run history is best-effort: a broken store never blocks a run.
	var recorder orchestrator.RunRecorder
	if db, err := state.OpenGlobal(); err != nil {
		log.Printf("[store] run history unavailable: %v", err)
	} else if err := db.Migrate(); err != nil {
		log.Printf("[store] run history unavailable: %v", err)
		db.Close()
	} else {
		defer db.Close()
		recorder = db
	}

	watcher, err := signal.New(".")
	if err != nil {
		return fmt.Errorf("setting up stop signal: %w", err)
	}
	defer watcher.Close()
	watcher.ClearStop()

	maxMentors := cfg.Router.MaxMentors
	if planMaxMentors > 0 {
		maxMentors = planMaxMentors
	}

	emitter := orchestrator.NewEventEmitter(64)
	pipeline := orchestrator.NewPipeline(orchestrator.PipelineConfig{
		Registry:             registry,
		Invoker:              agent.NewInvoker(client, library, cfg.Timeouts.Agent),
		Grounding:            fetcher,
		Recorder:             recorder,
		Emitter:              emitter,
		MaxMentors:           maxMentors,
		MinTagMatches:        cfg.Router.MinTagMatches,
		FanInTimeout:         cfg.Timeouts.FanIn,
		GlobalDeadline:       cfg.Timeouts.Global,
		AllowPartialOnCancel: cfg.Synthesis.AllowPartialOnCancel || planPartialOnCancel,
		StopChan:             watcher.Chan(),
	})

	var run *models.PipelineRun
	var runErr error
	if planHeadless {
		run, runErr = runHeadless(pipeline, emitter, fc)
	} else {
		run, runErr = runWithBoard(pipeline, emitter, registry, fc)
	}

	input, output := client.Tracker().Total()
	fmt.Printf("\nTokens: %d in / %d out across %d call(s), estimated cost $%.2f\n",
		input, output, client.Tracker().Calls(), client.Tracker().Cost())

	if runErr != nil {
		printRunFailure(run, runErr)
		os.Exit(1)
	}

	rendered := plan.Render(run.Plan, registry)
	fmt.Println()
	color.New(color.FgCyan, color.Bold).Printf("Run %s complete\n\n", run.ID)
	fmt.Println(rendered)

	if fc.PriorPlanPath != "" {
		diff, err := plan.DiffAgainstPrior(fc.PriorPlanPath, rendered)
		switch {
		case err != nil:
			log.Printf("[plan] diff against prior plan failed: %v", err)
		case diff == "":
			fmt.Println("No changes against your prior plan.")
		default:
			color.New(color.FgYellow).Println("Changes against your prior plan:")
			fmt.Println(diff)
		}
	}
	return nil
}

// runHeadless executes the pipeline with plain log output.
func runHeadless(pipeline *orchestrator.Pipeline, emitter *orchestrator.EventEmitter, fc models.FounderContext) (*models.PipelineRun, error) {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range emitter.Events() {
			// Headless progress comes from the log lines; events are
			// consumed so the emitter never backs up.
		}
	}()

	run, err := pipeline.Execute(context.Background(), fc)
	emitter.Close()
	<-drained
	return run, err
}

// printRunFailure reports the structured pipeline error with its
// per-persona diagnostics.
func printRunFailure(run *models.PipelineRun, err error) {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "\nRun failed: %v\n", err)
	if run == nil || len(run.Failures) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "\nMentor diagnostics:")
	for _, f := range run.Failures {
		fmt.Fprintf(os.Stderr, "  - %s: %s", f.PersonaID, f.Kind)
		if f.Detail != "" {
			fmt.Fprintf(os.Stderr, " (%s)", f.Detail)
		}
		fmt.Fprintln(os.Stderr)
	}
	if run.FinishedAt.After(run.StartedAt) {
		fmt.Fprintf(os.Stderr, "\nRun %s failed after %s\n", run.ID, run.Duration().Round(time.Millisecond))
	}
}
