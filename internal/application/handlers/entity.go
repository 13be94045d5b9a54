// Package handlers is the application layer consumed by the CLI: thin
// wrappers that translate between user input and the domain services.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/services"
)

// EntityHandler handles entity operations at the application layer.
type EntityHandler struct {
	registry *services.Registry
	graph    *services.Graph
	eventLog *services.EventLog
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(registry *services.Registry, graph *services.Graph, eventLog *services.EventLog) *EntityHandler {
	return &EntityHandler{
		registry: registry,
		graph:    graph,
		eventLog: eventLog,
	}
}

// HandleCreate adds a new entity. The sponsor reference may be an id or a
// unique name.
func (h *EntityHandler) HandleCreate(ctx context.Context, name, kind, sponsorRef string) (*entities.Entity, error) {
	k, err := entities.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	sponsorID := ""
	if sponsorRef != "" {
		sponsor, err := h.HandleResolve(ctx, sponsorRef)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrInvalidSponsor, err)
		}
		sponsorID = sponsor.ID
	}
	return h.registry.Create(ctx, name, k, sponsorID)
}

// HandleSetSponsor changes or clears an entity's sponsor.
func (h *EntityHandler) HandleSetSponsor(ctx context.Context, ref, sponsorRef string) error {
	entity, err := h.HandleResolve(ctx, ref)
	if err != nil {
		return err
	}

	sponsorID := ""
	if sponsorRef != "" {
		sponsor, err := h.HandleResolve(ctx, sponsorRef)
		if err != nil {
			return fmt.Errorf("%w: %v", entities.ErrInvalidSponsor, err)
		}
		sponsorID = sponsor.ID
	}
	return h.registry.SetSponsor(ctx, entity.ID, sponsorID)
}

// HandleTransition moves an entity to a new lifecycle state.
func (h *EntityHandler) HandleTransition(ctx context.Context, ref, state string, since time.Time, until *time.Time) error {
	entity, err := h.HandleResolve(ctx, ref)
	if err != nil {
		return err
	}
	kind, err := entities.ParseStateKind(state)
	if err != nil {
		return err
	}
	return h.registry.TransitionState(ctx, entity.ID, kind, since, until)
}

// HandleSchedule sets or clears an entity's follow-up.
func (h *EntityHandler) HandleSchedule(ctx context.Context, ref, note string, date *time.Time) error {
	entity, err := h.HandleResolve(ctx, ref)
	if err != nil {
		return err
	}
	return h.registry.ScheduleAction(ctx, entity.ID, note, date)
}

// HandlePostpone moves an entity's follow-up date.
func (h *EntityHandler) HandlePostpone(ctx context.Context, ref string, date time.Time) error {
	entity, err := h.HandleResolve(ctx, ref)
	if err != nil {
		return err
	}
	return h.registry.PostponeAction(ctx, entity.ID, date)
}

// EntityListResult contains the result of listing entities.
type EntityListResult struct {
	Entities []*entities.Entity `json:"entities"`
	Total    int                `json:"total"`
}

// HandleList returns entities with pagination.
func (h *EntityHandler) HandleList(ctx context.Context, limit, offset int) (*EntityListResult, error) {
	list, err := h.registry.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &EntityListResult{Entities: list, Total: len(list)}, nil
}

// HandleFind searches entities by name fragment.
func (h *EntityHandler) HandleFind(ctx context.Context, name string) (*EntityListResult, error) {
	list, err := h.registry.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &EntityListResult{Entities: list, Total: len(list)}, nil
}

// EntityDetail is everything the show command prints about one entity.
type EntityDetail struct {
	Entity    *entities.Entity    `json:"entity"`
	Sponsor   *entities.Entity    `json:"sponsor,omitempty"`
	Sponsored []*entities.Entity  `json:"sponsored,omitempty"`
	Neighbors []services.Neighbor `json:"neighbors,omitempty"`
	Events    []entities.Event    `json:"events,omitempty"`
}

// HandleShow resolves an entity and gathers its sponsor, sponsored
// entities, neighbors and event history.
func (h *EntityHandler) HandleShow(ctx context.Context, ref string) (*EntityDetail, error) {
	entity, err := h.HandleResolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	detail := &EntityDetail{Entity: entity}
	if entity.SponsorID != "" {
		if detail.Sponsor, err = h.registry.Lookup(ctx, entity.SponsorID); err != nil {
			return nil, err
		}
	}
	if detail.Sponsored, err = h.registry.Sponsored(ctx, entity.ID); err != nil {
		return nil, err
	}
	if detail.Neighbors, err = h.graph.Neighbors(ctx, entity.ID, entities.DirectionBoth); err != nil {
		return nil, err
	}
	if detail.Events, err = h.eventLog.Query(ctx, entities.EventFilter{EntityID: entity.ID}); err != nil {
		return nil, err
	}
	return detail, nil
}

// HandleResolve finds an entity by id or by unique name. Names are not
// unique in general, so an ambiguous reference is an error rather than a
// guess.
func (h *EntityHandler) HandleResolve(ctx context.Context, ref string) (*entities.Entity, error) {
	entity, err := h.registry.Lookup(ctx, ref)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, entities.ErrUnknownEntity) {
		return nil, err
	}

	matches, err := h.registry.FindByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	var exact []*entities.Entity
	for _, m := range matches {
		if m.Name == ref {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return nil, fmt.Errorf("%q is ambiguous: %d entities share that name, use an id", ref, len(exact))
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrUnknownEntity, ref)
}
