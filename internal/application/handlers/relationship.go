package handlers

import (
	"context"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/services"
)

// RelationshipHandler handles relationship operations at the application
// layer.
type RelationshipHandler struct {
	graph    *services.Graph
	entities *EntityHandler
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(graph *services.Graph, entityHandler *EntityHandler) *RelationshipHandler {
	return &RelationshipHandler{
		graph:    graph,
		entities: entityHandler,
	}
}

// HandleConnect creates a labeled edge between two entities referenced by
// id or unique name. Connecting an existing triple again returns the
// existing edge.
func (h *RelationshipHandler) HandleConnect(ctx context.Context, sourceRef, label, targetRef string, bidirectional bool) (*entities.Relationship, error) {
	source, err := h.entities.HandleResolve(ctx, sourceRef)
	if err != nil {
		return nil, err
	}
	target, err := h.entities.HandleResolve(ctx, targetRef)
	if err != nil {
		return nil, err
	}
	return h.graph.Connect(ctx, source.ID, target.ID, label, bidirectional)
}

// HandleDisconnect removes the edge with the given triple.
func (h *RelationshipHandler) HandleDisconnect(ctx context.Context, sourceRef, label, targetRef string) error {
	source, err := h.entities.HandleResolve(ctx, sourceRef)
	if err != nil {
		return err
	}
	target, err := h.entities.HandleResolve(ctx, targetRef)
	if err != nil {
		return err
	}
	return h.graph.Disconnect(ctx, source.ID, target.ID, label)
}

// HandleNeighbors lists the entities connected to the given one.
func (h *RelationshipHandler) HandleNeighbors(ctx context.Context, ref string, direction entities.Direction) ([]services.Neighbor, error) {
	entity, err := h.entities.HandleResolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return h.graph.Neighbors(ctx, entity.ID, direction)
}
