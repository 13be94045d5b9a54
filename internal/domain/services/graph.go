package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
)

// Neighbor is an entity reachable over a relationship edge, together with
// the edge that connects it.
type Neighbor struct {
	Entity *entities.Entity `json:"entity"`
	Label  string           `json:"label"`
	// Mutual is set when the connecting edge is bidirectional.
	Mutual bool `json:"mutual"`
}

// Graph manages the relationship edges between entities. Unlike
// sponsorship, relationships form an arbitrary directed multigraph with no
// cycle restriction.
type Graph struct {
	store ports.Store
	now   ports.Clock
}

// NewGraph creates a new Graph.
func NewGraph(store ports.Store, now ports.Clock) *Graph {
	if now == nil {
		now = time.Now
	}
	return &Graph{store: store, now: now}
}

// Connect adds a labeled edge between two entities. It is idempotent:
// connecting an identical (source, target, label) triple again returns the
// existing edge without duplicating it or logging anything.
func (g *Graph) Connect(ctx context.Context, sourceID, targetID, label string, bidirectional bool) (*entities.Relationship, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: %s", entities.ErrSelfRelationship, sourceID)
	}
	if err := g.ensureExists(ctx, sourceID); err != nil {
		return nil, err
	}
	if err := g.ensureExists(ctx, targetID); err != nil {
		return nil, err
	}

	existing, err := g.store.FindRelationship(ctx, sourceID, targetID, label)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := g.now()
	rel := &entities.Relationship{
		ID:            uuid.New().String(),
		SourceID:      sourceID,
		TargetID:      targetID,
		Label:         label,
		Bidirectional: bidirectional,
		CreatedAt:     now,
	}
	if err := g.store.SaveRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}

	event := entities.NewLogEvent(now, entities.MsgConnected, label,
		entities.Actor{EntityID: sourceID, Role: entities.RoleSubject},
		entities.Actor{EntityID: targetID, Role: entities.RoleStarring},
	)
	if _, err := g.store.AppendEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("recording event: %w", err)
	}
	return rel, nil
}

// Disconnect removes the edge with the exact (source, target, label)
// triple, failing with entities.ErrNotFound when no such edge exists.
// Past events referencing the endpoints are left untouched.
func (g *Graph) Disconnect(ctx context.Context, sourceID, targetID, label string) error {
	rel, err := g.store.FindRelationship(ctx, sourceID, targetID, label)
	if err != nil {
		return fmt.Errorf("looking up relationship: %w", err)
	}
	if rel == nil {
		return fmt.Errorf("%w: %s -[%s]-> %s", entities.ErrNotFound, sourceID, label, targetID)
	}
	if err := g.store.DeleteRelationship(ctx, rel.ID); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}

	event := entities.NewLogEvent(g.now(), entities.MsgDisconnected, label,
		entities.Actor{EntityID: sourceID, Role: entities.RoleSubject},
		entities.Actor{EntityID: targetID, Role: entities.RoleStarring},
	)
	if _, err := g.store.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// Neighbors returns the entities connected to the given one in the given
// direction, with the label of the connecting edge. Bidirectional edges are
// visible from both endpoints in either direction.
func (g *Graph) Neighbors(ctx context.Context, entityID string, direction entities.Direction) ([]Neighbor, error) {
	if err := g.ensureExists(ctx, entityID); err != nil {
		return nil, err
	}

	rels, err := g.store.FindRelationshipsByEntity(ctx, entityID, direction)
	if err != nil {
		return nil, fmt.Errorf("finding relationships: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(rels))
	for _, rel := range rels {
		otherID := rel.TargetID
		if otherID == entityID {
			otherID = rel.SourceID
		}
		other, err := g.store.FindEntityByID(ctx, otherID)
		if err != nil {
			return nil, fmt.Errorf("looking up neighbor: %w", err)
		}
		if other == nil {
			return nil, fmt.Errorf("%w: relationship %s references %s", entities.ErrUnknownEntity, rel.ID, otherID)
		}
		neighbors = append(neighbors, Neighbor{Entity: other, Label: rel.Label, Mutual: rel.Bidirectional})
	}
	return neighbors, nil
}

// Count returns the total number of edges.
func (g *Graph) Count(ctx context.Context) (int, error) {
	return g.store.CountRelationships(ctx)
}

func (g *Graph) ensureExists(ctx context.Context, id string) error {
	entity, err := g.store.FindEntityByID(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up entity: %w", err)
	}
	if entity == nil {
		return fmt.Errorf("%w: %s", entities.ErrUnknownEntity, id)
	}
	return nil
}
