package services

import (
	"context"
	"fmt"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
)

// EventLog is the append-only record of everything that happened in the
// landscape. Entries are never mutated or removed; the store-assigned id
// defines the canonical timeline, with timestamp ties broken by insertion
// order.
type EventLog struct {
	store ports.Store
	now   ports.Clock
}

// NewEventLog creates a new EventLog.
func NewEventLog(store ports.Store, now ports.Clock) *EventLog {
	if now == nil {
		now = time.Now
	}
	return &EventLog{store: store, now: now}
}

// Append validates and stores an event, returning it with the assigned id.
// It requires at least one actor and fails with entities.ErrUnknownActor
// when any actor entity does not exist; once actors are validated the
// append cannot fail for domain reasons.
func (l *EventLog) Append(ctx context.Context, event entities.Event) (*entities.Event, error) {
	if len(event.Actors) == 0 {
		return nil, fmt.Errorf("%w: event needs at least one actor", entities.ErrUnknownActor)
	}
	for _, actor := range event.Actors {
		e, err := l.store.FindEntityByID(ctx, actor.EntityID)
		if err != nil {
			return nil, fmt.Errorf("looking up actor: %w", err)
		}
		if e == nil {
			return nil, fmt.Errorf("%w: %s", entities.ErrUnknownActor, actor.EntityID)
		}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	id, err := l.store.AppendEvent(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}
	event.ID = id
	return &event, nil
}

// Record appends a user-authored log entry about an entity. The timestamp
// may be backdated to describe something that happened earlier; the log
// still reflects when it was recorded through the id order.
func (l *EventLog) Record(ctx context.Context, entityID, message, payload string, ts time.Time) (*entities.Event, error) {
	recordedBy, err := l.store.GetMeta(ctx, MetaOwnerID)
	if err != nil {
		return nil, fmt.Errorf("reading owner: %w", err)
	}

	actors := make([]entities.Actor, 0, 2)
	if recordedBy != "" && recordedBy != entityID {
		actors = append(actors, entities.Actor{EntityID: recordedBy, Role: entities.RoleRecordedBy})
	}
	actors = append(actors, entities.Actor{EntityID: entityID, Role: entities.RoleSubject})

	return l.Append(ctx, entities.NewLogEvent(ts, message, payload, actors...))
}

// Query returns the events matching the filter in ascending id order.
func (l *EventLog) Query(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	return l.store.QueryEvents(ctx, filter)
}
