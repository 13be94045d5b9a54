package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelateCmd() *cobra.Command {
	var bidirectional bool

	cmd := &cobra.Command{
		Use:   "relate <source> <label> <target>",
		Short: "Create a relationship between two entities",
		Long: `Creates a labeled, directed relationship edge between two entities.
Relationships are independent of sponsorship and carry no cycle rule.
Connecting the same (source, label, target) triple twice is a no-op.

Use quotes for entity names with spaces.

Examples:
  land relate "Alice" employee "Acme Corp"
  land relate "Alice" friendOf "Bob" --bidirectional
  land relate "Acme Corp" foundedBy "Bob"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args, bidirectional)
		},
	}

	cmd.Flags().BoolVar(&bidirectional, "bidirectional", false, "Make the relationship mutual (one shared edge)")

	cmd.AddCommand(newRelateDeleteCmd())

	return cmd
}

func runRelate(cmd *cobra.Command, args []string, bidirectional bool) error {
	ctx := cmd.Context()
	source, label, target := args[0], args[1], args[2]

	return withDeps(func(d *Deps) error {
		rel, err := d.Relationships.HandleConnect(ctx, source, label, target, bidirectional)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		if rel.Bidirectional {
			fmt.Printf("%s <-[%s]-> %s\n", source, rel.Label, target)
		} else {
			fmt.Printf("%s -[%s]-> %s\n", source, rel.Label, target)
		}
		return nil
	})
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <source> <label> <target>",
		Short: "Remove a relationship",
		Long: `Removes the relationship edge with the exact (source, label, target)
triple. Past events referencing the two entities are kept.`,
		Args: cobra.ExactArgs(3),
		RunE: runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source, label, target := args[0], args[1], args[2]

	return withDeps(func(d *Deps) error {
		if err := d.Relationships.HandleDisconnect(ctx, source, label, target); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Printf("Removed %s -[%s]-> %s\n", source, label, target)
		return nil
	})
}
