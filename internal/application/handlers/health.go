package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/services"
)

// HealthHandler handles health evaluation at the application layer.
type HealthHandler struct {
	health   *services.Health
	eventLog *services.EventLog
	registry *services.Registry
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(health *services.Health, eventLog *services.EventLog, registry *services.Registry) *HealthHandler {
	return &HealthHandler{
		health:   health,
		eventLog: eventLog,
		registry: registry,
	}
}

// HealthEntry pairs an entity with its derived status.
type HealthEntry struct {
	Entity *entities.Entity      `json:"entity"`
	Status entities.HealthStatus `json:"status"`
}

// HandleEvaluate derives the status of every scheduled entity at the given
// reference date. When materialize is set, the synthesized delay events are
// appended to the log; otherwise they remain derived-only.
func (h *HealthHandler) HandleEvaluate(ctx context.Context, now time.Time, grace time.Duration, materialize bool) ([]HealthEntry, error) {
	statuses, err := h.health.Evaluate(ctx, now, grace)
	if err != nil {
		return nil, err
	}

	entries := make([]HealthEntry, 0, len(statuses))
	for id, status := range statuses {
		entity, err := h.registry.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HealthEntry{Entity: entity, Status: status})
	}
	sortEntries(entries)

	if materialize {
		delays, err := h.health.DelayEvents(ctx, now, grace)
		if err != nil {
			return nil, err
		}
		for _, d := range delays {
			if _, err := h.eventLog.Append(ctx, d); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}

// HandleAgenda lists the entities whose follow-up falls in the window.
func (h *HealthHandler) HandleAgenda(ctx context.Context, since, until time.Time) ([]*entities.Entity, error) {
	return h.health.Agenda(ctx, since, until)
}

// HandleReview suggests entities that deserve attention.
func (h *HealthHandler) HandleReview(ctx context.Context, now time.Time) ([]entities.Suggestion, error) {
	return h.health.Review(ctx, now)
}

// sortEntries orders health output by severity, then by due date.
func sortEntries(entries []HealthEntry) {
	rank := map[entities.HealthStatus]int{
		entities.StatusOverdue: 0,
		entities.StatusDelayed: 1,
		entities.StatusOnTrack: 2,
	}
	sort.Slice(entries, func(i, j int) bool {
		if rank[entries[i].Status] != rank[entries[j].Status] {
			return rank[entries[i].Status] < rank[entries[j].Status]
		}
		return entries[i].Entity.NextActionDate.Before(*entries[j].Entity.NextActionDate)
	})
}
