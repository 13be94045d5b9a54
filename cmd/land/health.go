package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newHealthCmd() *cobra.Command {
	var now string
	var materialize bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Evaluate follow-up health across the landscape",
		Long: `Derives the status of every entity with a scheduled follow-up:
on_track while the date has not passed, delayed within the grace
period, overdue after it. Root and historical entities are exempt.

Evaluation is read-only unless --materialize is set, in which case the
synthesized delay events are appended to the log.

Examples:
  land health
  land health --now 2026-09-01
  land health --materialize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, now, materialize)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "Reference date (yyyy-mm-dd, default today)")
	cmd.Flags().BoolVar(&materialize, "materialize", false, "Append delay events to the log")

	return cmd
}

func runHealth(cmd *cobra.Command, now string, materialize bool) error {
	ctx := cmd.Context()

	ref := time.Now()
	if now != "" {
		var err error
		if ref, err = entities.ParseDate(now); err != nil {
			return err
		}
	}

	return withDeps(func(d *Deps) error {
		grace := time.Duration(d.Config.Health.GraceDays) * 24 * time.Hour

		entries, err := d.Health.HandleEvaluate(ctx, ref, grace, materialize)
		if err != nil {
			return fmt.Errorf("evaluating health: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Nothing is scheduled.")
			return nil
		}

		fmt.Printf("Health at %s (grace %dd):\n\n", entities.DateOnly(ref).Format(entities.DateFormat), d.Config.Health.GraceDays)
		for _, entry := range entries {
			fmt.Printf("  [%-8s] %s (%s)", entry.Status, entry.Entity.Name, shortID(entry.Entity.ID))
			if entry.Entity.NextActionDate != nil {
				fmt.Printf("  due %s", entry.Entity.NextActionDate.Format(entities.DateFormat))
			}
			if entry.Entity.NextActionNote != "" {
				fmt.Printf("  %s", entry.Entity.NextActionNote)
			}
			fmt.Println()
		}
		return nil
	})
}
