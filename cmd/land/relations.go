package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newRelationsCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "relations <entity>",
		Short: "List the entities related to one entity",
		Long: `Lists the relationship neighbors of an entity. Bidirectional edges
are visible from both endpoints in either direction.

Examples:
  land relations "Alice"
  land relations "Acme Corp" --direction incoming`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelations(cmd, args[0], direction)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "both", "Edge direction (outgoing, incoming, both)")

	return cmd
}

func runRelations(cmd *cobra.Command, ref, direction string) error {
	ctx := cmd.Context()

	dir, err := entities.ParseDirection(direction)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		neighbors, err := d.Relationships.HandleNeighbors(ctx, ref, dir)
		if err != nil {
			return fmt.Errorf("listing relations: %w", err)
		}

		if len(neighbors) == 0 {
			fmt.Println("No relations found.")
			return nil
		}

		fmt.Printf("Relations of %q (%s):\n\n", ref, dir)
		for _, n := range neighbors {
			marker := ""
			if n.Mutual {
				marker = " (mutual)"
			}
			fmt.Printf("  [%s] %s  %s%s\n", n.Label, shortID(n.Entity.ID), n.Entity.Name, marker)
		}
		return nil
	})
}
