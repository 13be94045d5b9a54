package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
	"github.com/seralba/landscape/internal/domain/services"
	"github.com/seralba/landscape/internal/infrastructure/snapshot"
)

// SnapshotHandler exports and imports the whole landscape as JSON lines.
type SnapshotHandler struct {
	store ports.Store
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(store ports.Store) *SnapshotHandler {
	return &SnapshotHandler{store: store}
}

// HandleExport streams everything to w, events in log order.
func (h *SnapshotHandler) HandleExport(ctx context.Context, w io.Writer) error {
	name, err := h.store.GetMeta(ctx, services.MetaLandscapeName)
	if err != nil {
		return fmt.Errorf("reading landscape name: %w", err)
	}
	ownerID, err := h.store.GetMeta(ctx, services.MetaOwnerID)
	if err != nil {
		return fmt.Errorf("reading owner id: %w", err)
	}

	snap := &snapshot.Snapshot{Meta: snapshot.Meta{Name: name, OwnerID: ownerID}}
	if snap.Entities, err = h.store.ListEntities(ctx, 0, 0); err != nil {
		return fmt.Errorf("listing entities: %w", err)
	}
	if snap.Relationships, err = h.store.ListRelationships(ctx); err != nil {
		return fmt.Errorf("listing relationships: %w", err)
	}
	if snap.Events, err = h.store.QueryEvents(ctx, entities.EventFilter{}); err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	return snapshot.Write(w, snap)
}

// HandleImport loads a snapshot into an empty store. Events are appended in
// their exported order, which reproduces the original ids because the log
// never has gaps.
func (h *SnapshotHandler) HandleImport(ctx context.Context, r io.Reader) (*snapshot.Snapshot, error) {
	count, err := h.store.CountEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("refusing to import into a non-empty landscape (%d entities)", count)
	}

	snap, err := snapshot.Read(r)
	if err != nil {
		return nil, err
	}

	for _, e := range snap.Entities {
		if err := h.store.SaveEntity(ctx, e); err != nil {
			return nil, fmt.Errorf("importing entity %s: %w", e.ID, err)
		}
	}
	for i := range snap.Relationships {
		if err := h.store.SaveRelationship(ctx, &snap.Relationships[i]); err != nil {
			return nil, fmt.Errorf("importing relationship %s: %w", snap.Relationships[i].ID, err)
		}
	}
	for i := range snap.Events {
		event := snap.Events[i]
		id, err := h.store.AppendEvent(ctx, &event)
		if err != nil {
			return nil, fmt.Errorf("importing event %d: %w", event.ID, err)
		}
		if event.ID != 0 && id != event.ID {
			return nil, fmt.Errorf("event order corrupted: expected id %d, got %d", event.ID, id)
		}
	}

	if snap.Meta.Name != "" {
		if err := h.store.SetMeta(ctx, services.MetaLandscapeName, snap.Meta.Name); err != nil {
			return nil, fmt.Errorf("storing landscape name: %w", err)
		}
	}
	if snap.Meta.OwnerID != "" {
		if err := h.store.SetMeta(ctx, services.MetaOwnerID, snap.Meta.OwnerID); err != nil {
			return nil, fmt.Errorf("storing owner id: %w", err)
		}
	}
	return snap, nil
}
