package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var kind string
	var sponsor string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new entity to the landscape",
		Long: `Adds a new entity. New entities start in the active state with the
current date as the start of their range.

Examples:
  land add "Alice" --kind person --sponsor "Ada"
  land add "Office lease" --kind object
  land add "Side project" --kind abstract`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], kind, sponsor)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "person", "Entity kind (person, object, abstract)")
	cmd.Flags().StringVarP(&sponsor, "sponsor", "s", "", "Sponsoring entity (id or unique name)")

	return cmd
}

func runAdd(cmd *cobra.Command, name, kind, sponsor string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		entity, err := d.Entities.HandleCreate(ctx, name, kind, sponsor)
		if err != nil {
			return fmt.Errorf("adding entity: %w", err)
		}

		fmt.Printf("Added %s %q (%s)\n", entity.Kind, entity.Name, entity.ID)
		return nil
	})
}
