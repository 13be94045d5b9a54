package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
	"github.com/seralba/landscape/internal/domain/services"
)

// InitHandler bootstraps an empty landscape: the owner, the root anchor,
// and the metadata binding them together.
type InitHandler struct {
	store    ports.Store
	registry *services.Registry
	now      ports.Clock
}

// NewInitHandler creates a new InitHandler.
func NewInitHandler(store ports.Store, registry *services.Registry, now ports.Clock) *InitHandler {
	if now == nil {
		now = time.Now
	}
	return &InitHandler{store: store, registry: registry, now: now}
}

// InitResult reports what the bootstrap created.
type InitResult struct {
	Owner *entities.Entity `json:"owner"`
	Root  *entities.Entity `json:"root"`
}

// HandleInit requires an empty store, creates the owner (a person, the
// recorded_by actor for system events from here on), then the root entity
// sponsored by the owner, and stores the landscape metadata.
func (h *InitHandler) HandleInit(ctx context.Context, ownerName, landscapeName string) (*InitResult, error) {
	count, err := h.store.CountEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("landscape already initialized (%d entities)", count)
	}

	owner, err := h.registry.Create(ctx, ownerName, entities.KindPerson, "")
	if err != nil {
		return nil, fmt.Errorf("creating owner: %w", err)
	}
	if err := h.store.SetMeta(ctx, services.MetaOwnerID, owner.ID); err != nil {
		return nil, fmt.Errorf("storing owner id: %w", err)
	}
	if err := h.store.SetMeta(ctx, services.MetaLandscapeName, landscapeName); err != nil {
		return nil, fmt.Errorf("storing landscape name: %w", err)
	}

	root, err := h.registry.Create(ctx, landscapeName, entities.KindAbstract, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("creating root entity: %w", err)
	}
	if err := h.registry.TransitionState(ctx, root.ID, entities.StateRoot, h.now(), nil); err != nil {
		return nil, fmt.Errorf("anchoring root entity: %w", err)
	}
	// re-read so the returned root carries its final state
	root, err = h.registry.Lookup(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	return &InitResult{Owner: owner, Root: root}, nil
}
