package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mentorra/mentorra/internal/config"
	"github.com/mentorra/mentorra/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the mentor registry",
	Long: `List every mentor persona the router can select, in registry order.

Registry order matters: it is the final tie-break when personas have the
same routing score and weight, and it decides the fallback panel when no
persona matches your context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		registry, err := persona.Load(cfg.Paths.Personas)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		dim := color.New(color.Faint)

		bold.Printf("Mentor registry (version %s, %d personas)\n\n", registry.Version(), registry.Len())
		for i, p := range registry.Ordered() {
			fmt.Printf("%d. %s ", i+1, p.Name)
			dim.Printf("(%s, weight %d)\n", p.ID, p.Weight)
			fmt.Printf("   expertise: %s\n", strings.Join(p.Tags, ", "))
		}
		return nil
	},
}
