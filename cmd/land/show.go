package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity>",
		Short: "Show an entity with its sponsorships, relationships and history",
		Long: `Shows everything known about one entity, referenced by id or unique
name: its lifecycle state, sponsor, sponsored entities, relationship
neighbors and full event history.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		detail, err := d.Entities.HandleShow(ctx, args[0])
		if err != nil {
			return fmt.Errorf("showing entity: %w", err)
		}

		e := detail.Entity
		fmt.Printf("%s (%s)\n", e.Name, e.ID)
		fmt.Printf("  kind:  %s\n", e.Kind)
		fmt.Printf("  state: %s\n", e.State)
		if detail.Sponsor != nil {
			fmt.Printf("  sponsor: %s (%s)\n", detail.Sponsor.Name, shortID(detail.Sponsor.ID))
		}
		if e.NextActionDate != nil || e.NextActionNote != "" {
			date := "-"
			if e.NextActionDate != nil {
				date = e.NextActionDate.Format(entities.DateFormat)
			}
			fmt.Printf("  next action: %s (%s)\n", e.NextActionNote, date)
		}

		if len(detail.Sponsored) > 0 {
			fmt.Printf("\nSponsors %d entities:\n", len(detail.Sponsored))
			for _, s := range detail.Sponsored {
				fmt.Printf("  %s  %s\n", shortID(s.ID), s.Name)
			}
		}

		if len(detail.Neighbors) > 0 {
			fmt.Printf("\nRelationships:\n")
			for _, n := range detail.Neighbors {
				arrow := "->"
				if n.Mutual {
					arrow = "<->"
				}
				fmt.Printf("  %s [%s] %s\n", arrow, n.Label, n.Entity.Name)
			}
		}

		if len(detail.Events) > 0 {
			fmt.Printf("\nHistory (%d events):\n", len(detail.Events))
			for _, evt := range detail.Events {
				printEventRow(&evt)
			}
		}
		return nil
	})
}

func printEventRow(evt *entities.Event) {
	sub := ""
	if evt.SubKind != "" {
		sub = "/" + evt.SubKind
	}
	fmt.Printf("  #%-4d %s  %s%s  %-15s %s\n",
		evt.ID,
		evt.Timestamp.Format(entities.DateFormat),
		evt.Kind, sub,
		evt.Message,
		evt.Payload,
	)
}
