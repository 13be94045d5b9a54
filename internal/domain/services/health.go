package services

import (
	"context"
	"fmt"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
)

// Review heuristics thresholds, taken from how the agenda is actually used:
// five postponements in a row means the follow-up is being dodged, and six
// months without a review means the record has gone cold.
const (
	avoidanceLimit = 5
	staleAfter     = 180 * 24 * time.Hour
)

// Health derives per-entity status from entity state, the event log and a
// caller-supplied reference date. It is a pure read-side projection: it
// never reads a wall clock and never mutates the store, so repeated calls
// with the same inputs yield the same result.
type Health struct {
	store ports.Store
}

// NewHealth creates a new Health evaluator.
func NewHealth(store ports.Store) *Health {
	return &Health{store: store}
}

// Evaluate classifies every entity with a scheduled follow-up date.
// An entity is on track while the date has not passed, delayed while the
// overshoot is within the grace period, and overdue beyond it. Entities in
// former or disabled states are never flagged, and the root entity is
// exempt.
func (h *Health) Evaluate(ctx context.Context, now time.Time, grace time.Duration) (map[string]entities.HealthStatus, error) {
	scheduled, err := h.store.FindEntitiesWithNextAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled entities: %w", err)
	}

	day := entities.DateOnly(now)
	statuses := make(map[string]entities.HealthStatus, len(scheduled))
	for _, e := range scheduled {
		if e.State.Kind == entities.StateRoot || e.State.IsHistorical() {
			continue
		}
		statuses[e.ID] = classify(*e.NextActionDate, day, grace)
	}
	return statuses, nil
}

func classify(due, now time.Time, grace time.Duration) entities.HealthStatus {
	if !due.Before(now) {
		return entities.StatusOnTrack
	}
	if now.Sub(due) <= grace {
		return entities.StatusDelayed
	}
	return entities.StatusOverdue
}

// DelayEvents synthesizes delay events for every delayed or overdue entity.
// The events are derived, not stored: the log only ever contains what was
// explicitly recorded, so callers that want them persisted append them
// deliberately.
func (h *Health) DelayEvents(ctx context.Context, now time.Time, grace time.Duration) ([]entities.Event, error) {
	scheduled, err := h.store.FindEntitiesWithNextAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled entities: %w", err)
	}

	day := entities.DateOnly(now)
	var events []entities.Event
	for _, e := range scheduled {
		if e.State.Kind == entities.StateRoot || e.State.IsHistorical() {
			continue
		}
		if classify(*e.NextActionDate, day, grace) == entities.StatusOnTrack {
			continue
		}
		late := int(day.Sub(*e.NextActionDate).Hours() / 24)
		event := entities.NewActionEvent(now, entities.MsgDelayed,
			fmt.Sprintf("%q late by %dd", e.NextActionNote, late),
			entities.Actor{EntityID: e.ID, Role: entities.RoleSubject},
		)
		event.SubKind = entities.SubKindDelay
		events = append(events, event)
	}
	return events, nil
}

// Agenda returns the entities whose follow-up date falls inside the given
// window, earliest first. Both bounds are inclusive.
func (h *Health) Agenda(ctx context.Context, since, until time.Time) ([]*entities.Entity, error) {
	scheduled, err := h.store.FindEntitiesWithNextAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled entities: %w", err)
	}

	from, to := entities.DateOnly(since), entities.DateOnly(until)
	var agenda []*entities.Entity
	for _, e := range scheduled {
		d := *e.NextActionDate
		if d.Before(from) || d.After(to) {
			continue
		}
		agenda = append(agenda, e)
	}
	return agenda, nil
}

// Review suggests entities that deserve attention. An entity is reported
// for at most one reason, checked in order:
//
//   - avoided: its latest log events are an unbroken run of at least five
//     postponements;
//   - stale: no review log entry and no update within the last 180 days;
//   - incomplete: no sponsor, no relationships, and never touched since
//     creation.
//
// Root, former and disabled entities are skipped.
func (h *Health) Review(ctx context.Context, now time.Time) ([]entities.Suggestion, error) {
	all, err := h.store.ListEntities(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}

	var suggestions []entities.Suggestion
	for _, e := range all {
		if e.State.Kind == entities.StateRoot || e.State.IsHistorical() {
			continue
		}
		logs, err := h.store.QueryEvents(ctx, entities.EventFilter{
			EntityID: e.ID,
			Kind:     entities.EventLog,
		})
		if err != nil {
			return nil, fmt.Errorf("querying events for %s: %w", e.ID, err)
		}

		if consecutivePostponements(logs) >= avoidanceLimit {
			suggestions = append(suggestions, entities.Suggestion{Entity: e, Reason: entities.ReviewAvoided})
			continue
		}
		if lastTouch(e, logs).Add(staleAfter).Before(now) {
			suggestions = append(suggestions, entities.Suggestion{Entity: e, Reason: entities.ReviewStale})
			continue
		}
		if isBare(e, logs) {
			rels, err := h.store.FindRelationshipsByEntity(ctx, e.ID, entities.DirectionBoth)
			if err != nil {
				return nil, fmt.Errorf("finding relationships for %s: %w", e.ID, err)
			}
			if len(rels) == 0 {
				suggestions = append(suggestions, entities.Suggestion{Entity: e, Reason: entities.ReviewIncomplete})
			}
		}
	}
	return suggestions, nil
}

// consecutivePostponements counts the postponed run at the head of the
// timeline, walking the ascending log backwards from the newest entry.
func consecutivePostponements(logs []entities.Event) int {
	run := 0
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Message != entities.MsgPostponed {
			break
		}
		run++
	}
	return run
}

// lastTouch is the most recent of the entity's update time and its latest
// review log entry.
func lastTouch(e *entities.Entity, logs []entities.Event) time.Time {
	touch := e.UpdatedAt
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Message == entities.MsgReview {
			if logs[i].Timestamp.After(touch) {
				touch = logs[i].Timestamp
			}
			break
		}
	}
	return touch
}

// isBare reports whether the record never grew past its creation: no
// sponsor, no follow-up, and no log entries besides "created".
func isBare(e *entities.Entity, logs []entities.Event) bool {
	if e.SponsorID != "" || e.HasNextAction() {
		return false
	}
	for _, l := range logs {
		if l.Message != entities.MsgCreated {
			return false
		}
	}
	return true
}
