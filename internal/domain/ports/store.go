// Package ports defines the interfaces between the domain services and the
// infrastructure implementations.
package ports

import (
	"context"
	"time"

	"github.com/seralba/landscape/internal/domain/entities"
)

// Store is the persistence port for the landscape: entities, relationships,
// the event log and landscape metadata. Implementations must round-trip
// every field losslessly and preserve event insertion order exactly — the
// log's ordering is semantically load-bearing.
//
// Lookup methods return (nil, nil) when nothing matches; domain services map
// that onto the appropriate domain error.
type Store interface {
	// EnsureSchema creates the storage schema if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error

	// Entity operations

	// SaveEntity inserts or updates an entity by id.
	SaveEntity(ctx context.Context, entity *entities.Entity) error

	// FindEntityByID finds an entity by its id.
	FindEntityByID(ctx context.Context, id string) (*entities.Entity, error)

	// FindEntitiesByName finds entities whose name contains the given
	// fragment, case-insensitively. Names are not unique.
	FindEntitiesByName(ctx context.Context, name string) ([]*entities.Entity, error)

	// ListEntities lists entities ordered by name. A limit <= 0 returns all.
	ListEntities(ctx context.Context, limit, offset int) ([]*entities.Entity, error)

	// FindEntitiesBySponsor lists the entities sponsored by the given id.
	FindEntitiesBySponsor(ctx context.Context, sponsorID string) ([]*entities.Entity, error)

	// FindRootEntity returns the entity holding the root state, if any.
	FindRootEntity(ctx context.Context) (*entities.Entity, error)

	// FindEntitiesWithNextAction lists entities that have a follow-up date,
	// ordered by that date ascending.
	FindEntitiesWithNextAction(ctx context.Context) ([]*entities.Entity, error)

	// CountEntities returns the number of entities in the landscape. It
	// bounds the sponsor-chain walk during cycle checks.
	CountEntities(ctx context.Context) (int, error)

	// Relationship operations

	// SaveRelationship inserts a relationship edge.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) error

	// FindRelationship finds the edge with the exact (source, target, label)
	// triple, ignoring direction flags.
	FindRelationship(ctx context.Context, sourceID, targetID, label string) (*entities.Relationship, error)

	// FindRelationshipsByEntity finds the edges visible from an entity in
	// the given direction. A bidirectional edge is visible from both
	// endpoints in either direction.
	FindRelationshipsByEntity(ctx context.Context, entityID string, direction entities.Direction) ([]entities.Relationship, error)

	// ListRelationships lists every edge ordered by creation time.
	ListRelationships(ctx context.Context) ([]entities.Relationship, error)

	// DeleteRelationship removes an edge by id. Past events referencing the
	// endpoints are left untouched.
	DeleteRelationship(ctx context.Context, id string) error

	// CountRelationships returns the number of edges.
	CountRelationships(ctx context.Context) (int, error)

	// Event log operations

	// AppendEvent appends an event and returns the assigned monotonic id.
	// Existing entries are never rewritten or reordered.
	AppendEvent(ctx context.Context, event *entities.Event) (int64, error)

	// QueryEvents returns events matching the filter in ascending id order.
	QueryEvents(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error)

	// Metadata operations

	// SetMeta stores a landscape-level key/value pair.
	SetMeta(ctx context.Context, key, value string) error

	// GetMeta returns a stored value, or "" when the key is absent.
	GetMeta(ctx context.Context, key string) (string, error)
}

// Clock supplies the reference time for stamping new records. The health
// evaluator never uses it: evaluation takes an explicit "now" so it stays
// deterministic.
type Clock func() time.Time
