package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSponsorCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:   "sponsor <entity> [sponsor]",
		Short: "Change or clear who is responsible for an entity",
		Long: `Sets the sponsor of an entity. Sponsorship forms a forest: an entity
has at most one sponsor and can never sponsor itself, directly or
transitively. Use --detach to clear the sponsor instead.

Examples:
  land sponsor "Side project" "Alice"
  land sponsor "Side project" --detach`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSponsor(cmd, args, detach)
		},
	}

	cmd.Flags().BoolVar(&detach, "detach", false, "Detach the entity from its sponsor")

	return cmd
}

func runSponsor(cmd *cobra.Command, args []string, detach bool) error {
	ctx := cmd.Context()

	sponsor := ""
	switch {
	case detach && len(args) > 1:
		return errors.New("--detach takes no sponsor argument")
	case !detach && len(args) < 2:
		return errors.New("either name a sponsor or pass --detach")
	case !detach:
		sponsor = args[1]
	}

	return withDeps(func(d *Deps) error {
		if err := d.Entities.HandleSetSponsor(ctx, args[0], sponsor); err != nil {
			return fmt.Errorf("setting sponsor: %w", err)
		}

		if detach {
			fmt.Printf("Detached %q from its sponsor.\n", args[0])
		} else {
			fmt.Printf("%q is now sponsored by %q.\n", args[0], sponsor)
		}
		return nil
	})
}
