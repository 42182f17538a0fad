package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentorra/mentorra/internal/signal"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request cancellation of an in-flight run",
	Long: `Write the stop signal file that an in-flight 'mentorra plan' watches.

The running pipeline cancels cooperatively: mentors that already finished
keep their briefs, and with partial-on-cancel enabled the run still
produces a plan from them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := signal.New(".")
		if err != nil {
			return fmt.Errorf("opening signal directory: %w", err)
		}
		defer w.Close()

		if err := w.RequestStop(); err != nil {
			return fmt.Errorf("writing stop signal: %w", err)
		}
		fmt.Println("Stop requested. An in-flight run in this directory will cancel shortly.")
		return nil
	},
}
