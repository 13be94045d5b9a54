package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newScheduleCmd() *cobra.Command {
	var note string
	var date string
	var clear bool

	cmd := &cobra.Command{
		Use:   "schedule <entity>",
		Short: "Set, update or resolve an entity's next action",
		Long: `Schedules a follow-up for an entity. Note and date may be set
independently, but only a dated action feeds health evaluation.
--clear resolves the current action and removes both fields.

Examples:
  land schedule "Alice" --note "call about the offer" --date 2026-09-01
  land schedule "Office lease" --note "renegotiate"
  land schedule "Alice" --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, args[0], note, date, clear)
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "What the follow-up is about")
	cmd.Flags().StringVarP(&date, "date", "d", "", "When it is due (yyyy-mm-dd)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Resolve and clear the scheduled action")

	return cmd
}

func runSchedule(cmd *cobra.Command, ref, note, date string, clear bool) error {
	ctx := cmd.Context()

	if clear && (note != "" || date != "") {
		return errors.New("--clear cannot be combined with --note or --date")
	}
	if !clear && note == "" && date == "" {
		return errors.New("nothing to schedule: pass --note and/or --date, or --clear")
	}

	var due *time.Time
	if date != "" {
		d, err := entities.ParseDate(date)
		if err != nil {
			return err
		}
		due = &d
	}

	return withDeps(func(d *Deps) error {
		if err := d.Entities.HandleSchedule(ctx, ref, note, due); err != nil {
			return fmt.Errorf("scheduling action: %w", err)
		}

		if clear {
			fmt.Printf("Resolved the scheduled action for %q.\n", ref)
		} else {
			fmt.Printf("Scheduled for %q.\n", ref)
		}
		return nil
	})
}

func newPostponeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "postpone <entity> <date>",
		Short: "Move an entity's next action to a later date",
		Long: `Moves an existing follow-up date. Postponements are recorded in the
event log; entities postponed again and again show up in 'land review'.

Examples:
  land postpone "Alice" 2026-10-01`,
		Args: cobra.ExactArgs(2),
		RunE: runPostpone,
	}
}

func runPostpone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	date, err := entities.ParseDate(args[1])
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		if err := d.Entities.HandlePostpone(ctx, args[0], date); err != nil {
			return fmt.Errorf("postponing action: %w", err)
		}

		fmt.Printf("Postponed %q to %s.\n", args[0], args[1])
		return nil
	})
}
