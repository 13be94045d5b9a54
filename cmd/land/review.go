package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newReviewCmd() *cobra.Command {
	var now string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Suggest entities that deserve attention",
		Long: `Suggests entities worth reviewing: follow-ups postponed many times in
a row (avoided), entities not touched for a long time (stale), and
entities with no sponsor, relationships or log entries (incomplete).

Recording a "review" log entry resets an entity's staleness clock:
  land log <entity> looked things over --message review

Examples:
  land review
  land review --now 2026-09-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, now)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "Reference date (yyyy-mm-dd, default today)")

	return cmd
}

func runReview(cmd *cobra.Command, now string) error {
	ctx := cmd.Context()

	ref := time.Now()
	if now != "" {
		var err error
		if ref, err = entities.ParseDate(now); err != nil {
			return err
		}
	}

	return withDeps(func(d *Deps) error {
		suggestions, err := d.Health.HandleReview(ctx, ref)
		if err != nil {
			return fmt.Errorf("building review: %w", err)
		}

		if len(suggestions) == 0 {
			fmt.Println("Nothing needs review.")
			return nil
		}

		fmt.Printf("Review suggestions (%d):\n\n", len(suggestions))
		for _, s := range suggestions {
			fmt.Printf("  [%-10s] %s (%s)\n", s.Reason, s.Entity.Name, shortID(s.Entity.ID))
		}
		return nil
	})
}
