package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mentorra/mentorra/internal/orchestrator"
	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/internal/tui"
	"github.com/mentorra/mentorra/pkg/models"
)

type boardResult struct {
	run *models.PipelineRun
	err error
}

// runWithBoard executes the pipeline behind the live mentor board.
// Quitting the board early cancels the run; the pipeline's own
// cancellation semantics decide whether a partial plan survives.
func runWithBoard(pipeline *orchestrator.Pipeline, emitter *orchestrator.EventEmitter, registry *persona.Registry, fc models.FounderContext) (*models.PipelineRun, error) {
	names := make(map[string]string, registry.Len())
	for _, p := range registry.Ordered() {
		names[p.ID] = p.Name
	}

	// The board owns the terminal; log lines would tear the frame.
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	prog := tea.NewProgram(tui.NewMonitor(names))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan boardResult, 1)
	go func() {
		run, err := pipeline.Execute(ctx, fc)
		results <- boardResult{run: run, err: err}
		emitter.Close()
		prog.Send(tui.DoneMsg{Run: run})
	}()

	go func() {
		for ev := range emitter.Events() {
			prog.Send(tui.EventMsg(ev))
		}
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		res := <-results
		return res.run, fmt.Errorf("display error: %w", err)
	}

	// A quit keypress returns before the pipeline settles; cancel and
	// let Execute resolve the run either way.
	select {
	case res := <-results:
		return res.run, res.err
	default:
		cancel()
		res := <-results
		return res.run, res.err
	}
}
