package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/application/handlers"
	"github.com/seralba/landscape/internal/domain/entities"
)

func newListCmd() *cobra.Command {
	var find string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities in the landscape",
		Long: `Lists tracked entities, ordered by name. Use --find to filter by a
name fragment (case-insensitive).

Examples:
  land list
  land list --find ali
  land list --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, find, limit)
		},
	}

	cmd.Flags().StringVarP(&find, "find", "f", "", "Filter entities by name fragment")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of entities to return")

	return cmd
}

func runList(cmd *cobra.Command, find string, limit int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		var result *handlers.EntityListResult
		var err error

		if find != "" {
			result, err = d.Entities.HandleFind(ctx, find)
		} else {
			result, err = d.Entities.HandleList(ctx, limit, 0)
		}
		if err != nil {
			return fmt.Errorf("listing entities: %w", err)
		}

		if len(result.Entities) == 0 {
			fmt.Println("No entities found.")
			return nil
		}

		fmt.Printf("Entities (%d total):\n\n", result.Total)
		for _, entity := range result.Entities {
			printEntityRow(entity)
		}
		return nil
	})
}

func printEntityRow(e *entities.Entity) {
	next := ""
	if e.NextActionDate != nil {
		next = " next: " + e.NextActionDate.Format(entities.DateFormat)
	}
	fmt.Printf("  %s  %-25s %-8s %-10s%s\n", shortID(e.ID), e.Name, e.Kind, e.State.Kind, next)
}

// shortID abbreviates a uuid for listings; full ids stay available via show.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
