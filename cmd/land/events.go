package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seralba/landscape/internal/domain/entities"
)

func newLogCmd() *cobra.Command {
	var message string
	var date string

	cmd := &cobra.Command{
		Use:   "log <entity> <text...>",
		Short: "Record a log entry about an entity",
		Long: `Appends a log event about an entity to the event log, recorded by the
landscape owner. Use --date to backdate the entry; the log still keeps
the true recording order through event ids.

The --message verb groups entries: "review" entries reset the staleness
clock used by 'land review'.

Examples:
  land log "Alice" met at the conference, wants a follow-up
  land log "Alice" quarterly check-in --message review
  land log "Office lease" signed the extension --date 2026-06-01`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, args, message, date)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "note", "Log verb (note, review, ...)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Backdate the entry (yyyy-mm-dd)")

	return cmd
}

func runLog(cmd *cobra.Command, args []string, message, date string) error {
	ctx := cmd.Context()
	ref := args[0]
	payload := strings.Join(args[1:], " ")

	var ts time.Time
	if date != "" {
		var err error
		if ts, err = entities.ParseDate(date); err != nil {
			return err
		}
	}

	return withDeps(func(d *Deps) error {
		event, err := d.Events.HandleRecord(ctx, ref, message, payload, ts)
		if err != nil {
			return fmt.Errorf("recording log entry: %w", err)
		}

		fmt.Printf("Recorded event #%d for %q.\n", event.ID, ref)
		return nil
	})
}

func newEventsCmd() *cobra.Command {
	var entity string
	var role string
	var kind string
	var since string
	var until string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Query the event log",
		Long: `Queries the append-only event log. Results are always in ascending
event id order, the canonical timeline.

Examples:
  land events
  land events --entity "Alice" --kind action
  land events --role recorded_by --since 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, entity, role, kind, since, until)
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Filter by involved entity (id or unique name)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Filter by actor role")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Filter by event kind (log, action)")
	cmd.Flags().StringVar(&since, "since", "", "Events at or after this date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&until, "until", "", "Events at or before this date (yyyy-mm-dd)")

	return cmd
}

func runEvents(cmd *cobra.Command, entity, role, kind, since, until string) error {
	ctx := cmd.Context()

	var r entities.Role
	if role != "" {
		var err error
		if r, err = entities.ParseRole(role); err != nil {
			return err
		}
	}
	var k entities.EventKind
	switch kind {
	case "":
	case string(entities.EventLog):
		k = entities.EventLog
	case string(entities.EventAction):
		k = entities.EventAction
	default:
		return fmt.Errorf("unknown event kind %q (log, action)", kind)
	}

	var sinceTime, untilTime *time.Time
	if since != "" {
		t, err := entities.ParseDate(since)
		if err != nil {
			return err
		}
		sinceTime = &t
	}
	if until != "" {
		t, err := entities.ParseDate(until)
		if err != nil {
			return err
		}
		// inclusive day bound
		t = t.Add(24*time.Hour - time.Nanosecond)
		untilTime = &t
	}

	return withDeps(func(d *Deps) error {
		events, err := d.Events.HandleQuery(ctx, entity, r, k, sinceTime, untilTime)
		if err != nil {
			return fmt.Errorf("querying events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No events found.")
			return nil
		}

		fmt.Printf("Events (%d total):\n\n", len(events))
		for i := range events {
			printEventRow(&events[i])
		}
		return nil
	})
}
