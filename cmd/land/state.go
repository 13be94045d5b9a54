package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newStateCmd() *cobra.Command {
	var since string
	var until string

	cmd := &cobra.Command{
		Use:   "state <entity> <state>",
		Short: "Transition an entity to a new lifecycle state",
		Long: `Moves an entity to a new lifecycle state with a validated temporal
range. States: root, active, passive, former, disabled. The root state
is a singleton marker with no range; disabled substitutes for deletion.

Examples:
  land state "Alice" passive --since 2024-01-01
  land state "Office lease" former --since 2023-01-01 --until 2024-06-30
  land state "Old phone" disabled --since 2024-06-30`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(cmd, args, since, until)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Start of the range (yyyy-mm-dd, default today)")
	cmd.Flags().StringVar(&until, "until", "", "Optional end of the range (yyyy-mm-dd)")

	return cmd
}

func runState(cmd *cobra.Command, args []string, since, until string) error {
	ctx := cmd.Context()

	sinceDate := time.Now()
	if since != "" {
		var err error
		if sinceDate, err = entities.ParseDate(since); err != nil {
			return err
		}
	}
	var untilDate *time.Time
	if until != "" {
		u, err := entities.ParseDate(until)
		if err != nil {
			return err
		}
		untilDate = &u
	}

	return withDeps(func(d *Deps) error {
		if err := d.Entities.HandleTransition(ctx, args[0], args[1], sinceDate, untilDate); err != nil {
			return fmt.Errorf("transitioning state: %w", err)
		}

		fmt.Printf("%q is now %s.\n", args[0], args[1])
		return nil
	})
}
