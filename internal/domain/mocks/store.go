// Package mocks provides hand-written in-memory test doubles for the
// domain ports.
package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/seralba/landscape/internal/domain/entities"
)

// Store is an in-memory implementation of ports.Store. It mirrors the
// semantics the sqlite repository provides — value copies on read/write,
// name-ordered listings, monotonic event ids — so services can be tested
// without a database. Set Err to force every call to fail.
type Store struct {
	Entities      map[string]*entities.Entity
	Relationships map[string]*entities.Relationship
	Events        []entities.Event
	Meta          map[string]string
	Err           error

	nextEventID int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		Entities:      make(map[string]*entities.Entity),
		Relationships: make(map[string]*entities.Relationship),
		Meta:          make(map[string]string),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (s *Store) EnsureSchema(_ context.Context) error { return s.Err }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// SaveEntity inserts or updates an entity by id.
func (s *Store) SaveEntity(_ context.Context, entity *entities.Entity) error {
	if s.Err != nil {
		return s.Err
	}
	cp := *entity
	s.Entities[entity.ID] = &cp
	return nil
}

// FindEntityByID finds an entity by its id, or returns (nil, nil).
func (s *Store) FindEntityByID(_ context.Context, id string) (*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	e, ok := s.Entities[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// FindEntitiesByName finds entities whose name contains the fragment,
// case-insensitively, ordered by name.
func (s *Store) FindEntitiesByName(_ context.Context, name string) ([]*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	needle := strings.ToLower(name)
	var out []*entities.Entity
	for _, e := range s.Entities {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortByName(out)
	return out, nil
}

// ListEntities lists entities ordered by name. A limit <= 0 returns all.
func (s *Store) ListEntities(_ context.Context, limit, offset int) ([]*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	all := make([]*entities.Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		cp := *e
		all = append(all, &cp)
	}
	sortByName(all)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// FindEntitiesBySponsor lists the entities sponsored by the given id.
func (s *Store) FindEntitiesBySponsor(_ context.Context, sponsorID string) ([]*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*entities.Entity
	for _, e := range s.Entities {
		if e.SponsorID == sponsorID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortByName(out)
	return out, nil
}

// FindRootEntity returns the entity holding the root state, if any.
func (s *Store) FindRootEntity(_ context.Context) (*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, e := range s.Entities {
		if e.State.Kind == entities.StateRoot {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

// FindEntitiesWithNextAction lists entities with a follow-up date, ordered
// by that date ascending.
func (s *Store) FindEntitiesWithNextAction(_ context.Context) ([]*entities.Entity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*entities.Entity
	for _, e := range s.Entities {
		if e.NextActionDate != nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextActionDate.Before(*out[j].NextActionDate)
	})
	return out, nil
}

// CountEntities returns the number of entities.
func (s *Store) CountEntities(_ context.Context) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.Entities), nil
}

// SaveRelationship inserts a relationship edge.
func (s *Store) SaveRelationship(_ context.Context, rel *entities.Relationship) error {
	if s.Err != nil {
		return s.Err
	}
	cp := *rel
	s.Relationships[rel.ID] = &cp
	return nil
}

// FindRelationship finds the edge with the exact triple, or (nil, nil).
func (s *Store) FindRelationship(_ context.Context, sourceID, targetID, label string) (*entities.Relationship, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, r := range s.Relationships {
		if r.SourceID == sourceID && r.TargetID == targetID && r.Label == label {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

// FindRelationshipsByEntity finds the edges visible from an entity in the
// given direction.
func (s *Store) FindRelationshipsByEntity(_ context.Context, entityID string, direction entities.Direction) ([]entities.Relationship, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []entities.Relationship
	for _, r := range s.Relationships {
		switch direction {
		case entities.DirectionOutgoing:
			if r.SourceID == entityID || (r.Bidirectional && r.TargetID == entityID) {
				out = append(out, *r)
			}
		case entities.DirectionIncoming:
			if r.TargetID == entityID || (r.Bidirectional && r.SourceID == entityID) {
				out = append(out, *r)
			}
		default:
			if r.SourceID == entityID || r.TargetID == entityID {
				out = append(out, *r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListRelationships lists every edge ordered by creation time.
func (s *Store) ListRelationships(_ context.Context) ([]entities.Relationship, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]entities.Relationship, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteRelationship removes an edge by id.
func (s *Store) DeleteRelationship(_ context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	delete(s.Relationships, id)
	return nil
}

// CountRelationships returns the number of edges.
func (s *Store) CountRelationships(_ context.Context) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.Relationships), nil
}

// AppendEvent appends an event and returns the assigned monotonic id.
func (s *Store) AppendEvent(_ context.Context, event *entities.Event) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.nextEventID++
	cp := *event
	cp.ID = s.nextEventID
	cp.Actors = append([]entities.Actor(nil), event.Actors...)
	s.Events = append(s.Events, cp)
	return cp.ID, nil
}

// QueryEvents returns matching events in ascending id order.
func (s *Store) QueryEvents(_ context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []entities.Event
	for i := range s.Events {
		if filter.Matches(&s.Events[i]) {
			out = append(out, s.Events[i])
		}
	}
	return out, nil
}

// SetMeta stores a landscape-level key/value pair.
func (s *Store) SetMeta(_ context.Context, key, value string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Meta[key] = value
	return nil
}

// GetMeta returns a stored value, or "" when the key is absent.
func (s *Store) GetMeta(_ context.Context, key string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Meta[key], nil
}

func sortByName(es []*entities.Entity) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Name == es[j].Name {
			return es[i].ID < es[j].ID
		}
		return es[i].Name < es[j].Name
	})
}
