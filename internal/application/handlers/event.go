package handlers

import (
	"context"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/services"
)

// EventHandler handles event log operations at the application layer.
type EventHandler struct {
	eventLog *services.EventLog
	entities *EntityHandler
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventLog *services.EventLog, entityHandler *EntityHandler) *EventHandler {
	return &EventHandler{
		eventLog: eventLog,
		entities: entityHandler,
	}
}

// HandleRecord appends a user-authored log entry about an entity. The
// message is a short verb ("note", "review", ...) the read-side rules can
// key on; a zero timestamp means "now", anything else backdates the entry.
func (h *EventHandler) HandleRecord(ctx context.Context, ref, message, payload string, ts time.Time) (*entities.Event, error) {
	entity, err := h.entities.HandleResolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return h.eventLog.Record(ctx, entity.ID, message, payload, ts)
}

// HandleQuery returns events matching the filter. The entity reference, if
// given, may be an id or unique name.
func (h *EventHandler) HandleQuery(ctx context.Context, ref string, role entities.Role, kind entities.EventKind, since, until *time.Time) ([]entities.Event, error) {
	filter := entities.EventFilter{Role: role, Kind: kind, Since: since, Until: until}
	if ref != "" {
		entity, err := h.entities.HandleResolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		filter.EntityID = entity.ID
	}
	return h.eventLog.Query(ctx, filter)
}
