package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newAgendaCmd() *cobra.Command {
	var from string
	var days int

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List follow-ups falling in a date window",
		Long: `Lists the entities whose scheduled follow-up falls in the window,
inclusive on both ends, ordered by date.

Examples:
  land agenda
  land agenda --days 30
  land agenda --from 2026-09-01 --days 14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgenda(cmd, from, days)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Window start (yyyy-mm-dd, default today)")
	cmd.Flags().IntVar(&days, "days", 7, "Window length in days")

	return cmd
}

func runAgenda(cmd *cobra.Command, from string, days int) error {
	ctx := cmd.Context()

	since := entities.DateOnly(time.Now())
	if from != "" {
		var err error
		if since, err = entities.ParseDate(from); err != nil {
			return err
		}
	}
	if days < 0 {
		return fmt.Errorf("window length must not be negative, got %d", days)
	}
	until := since.AddDate(0, 0, days)

	return withDeps(func(d *Deps) error {
		agenda, err := d.Health.HandleAgenda(ctx, since, until)
		if err != nil {
			return fmt.Errorf("building agenda: %w", err)
		}

		if len(agenda) == 0 {
			fmt.Printf("Nothing due between %s and %s.\n",
				since.Format(entities.DateFormat), until.Format(entities.DateFormat))
			return nil
		}

		fmt.Printf("Agenda %s to %s (%d due):\n\n",
			since.Format(entities.DateFormat), until.Format(entities.DateFormat), len(agenda))
		for _, entity := range agenda {
			fmt.Printf("  %s  %s (%s)", entity.NextActionDate.Format(entities.DateFormat), entity.Name, shortID(entity.ID))
			if entity.NextActionNote != "" {
				fmt.Printf("  %s", entity.NextActionNote)
			}
			fmt.Println()
		}
		return nil
	})
}
