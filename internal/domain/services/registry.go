package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
)

// Metadata keys stored alongside the landscape data.
const (
	// MetaLandscapeName is the human-readable name chosen at init.
	MetaLandscapeName = "landscape_name"
	// MetaOwnerID is the entity that records system-emitted events.
	MetaOwnerID = "owner_id"
)

// Registry owns the entity lifecycle: identity, sponsorship, lifecycle
// state and scheduled follow-ups. Every mutation validates its inputs
// against the current store state before writing, and every state-affecting
// mutation is mirrored by an event in the log.
type Registry struct {
	store ports.Store
	now   ports.Clock
}

// NewRegistry creates a new Registry.
func NewRegistry(store ports.Store, now ports.Clock) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, now: now}
}

// Create adds a new entity, optionally sponsored by an existing one.
// It fails with entities.ErrInvalidSponsor when the sponsor id does not
// exist, and emits a "created" log event with the new entity as subject.
func (r *Registry) Create(ctx context.Context, name string, kind entities.Kind, sponsorID string) (*entities.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("entity name must not be empty")
	}

	id := uuid.New().String()
	if sponsorID != "" {
		sponsor, err := r.store.FindEntityByID(ctx, sponsorID)
		if err != nil {
			return nil, fmt.Errorf("looking up sponsor: %w", err)
		}
		if sponsor == nil {
			return nil, fmt.Errorf("%w: sponsor %s does not exist", entities.ErrInvalidSponsor, sponsorID)
		}
		// A fresh id cannot appear in an existing chain, but the walk also
		// guards against a corrupted store.
		if err := r.checkSponsorChain(ctx, id, sponsorID); err != nil {
			return nil, err
		}
	}

	now := r.now()
	entity := &entities.Entity{
		ID:        id,
		Name:      name,
		Kind:      kind,
		SponsorID: sponsorID,
		State: entities.RelState{
			Kind:  entities.StateActive,
			Range: &entities.TemporalRange{Since: entities.DateOnly(now)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.SaveEntity(ctx, entity); err != nil {
		return nil, fmt.Errorf("saving entity: %w", err)
	}

	if err := r.emitLog(ctx, entity.ID, entities.MsgCreated, fmt.Sprintf("%s %q added", kind, name)); err != nil {
		return nil, err
	}
	return entity, nil
}

// SetSponsor changes or clears an entity's sponsor. An empty sponsorID
// detaches the entity, making it a root of its own subtree (distinct from
// the singleton root state). Fails with entities.ErrCycleDetected when the
// new edge would make the sponsorship forest cyclic.
func (r *Registry) SetSponsor(ctx context.Context, id, sponsorID string) error {
	entity, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	if sponsorID != "" {
		if sponsorID == id {
			return fmt.Errorf("%w: %s cannot sponsor itself", entities.ErrInvalidSponsor, id)
		}
		sponsor, err := r.store.FindEntityByID(ctx, sponsorID)
		if err != nil {
			return fmt.Errorf("looking up sponsor: %w", err)
		}
		if sponsor == nil {
			return fmt.Errorf("%w: sponsor %s does not exist", entities.ErrInvalidSponsor, sponsorID)
		}
		if err := r.checkSponsorChain(ctx, id, sponsorID); err != nil {
			return err
		}
	}

	old := entity.SponsorID
	entity.SponsorID = sponsorID
	entity.UpdatedAt = r.now()
	if err := r.store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}

	payload := fmt.Sprintf("sponsor %q -> %q", old, sponsorID)
	return r.emitLog(ctx, entity.ID, entities.MsgSponsorChanged, payload)
}

// checkSponsorChain walks from sponsorID upward and fails when id is
// encountered. The walk is bounded by the registry size so a corrupted
// store cannot loop forever.
func (r *Registry) checkSponsorChain(ctx context.Context, id, sponsorID string) error {
	bound, err := r.store.CountEntities(ctx)
	if err != nil {
		return fmt.Errorf("counting entities: %w", err)
	}

	current := sponsorID
	for i := 0; i <= bound && current != ""; i++ {
		if current == id {
			return fmt.Errorf("%w: %s is already sponsored, directly or transitively, by %s",
				entities.ErrCycleDetected, sponsorID, id)
		}
		next, err := r.store.FindEntityByID(ctx, current)
		if err != nil {
			return fmt.Errorf("walking sponsor chain: %w", err)
		}
		if next == nil {
			return nil
		}
		current = next.SponsorID
	}
	return nil
}

// TransitionState moves an entity to a new lifecycle state. The temporal
// range is validated (entities.ErrInvalidTemporalRange) and the singleton
// root state is enforced (entities.ErrDuplicateRoot).
func (r *Registry) TransitionState(ctx context.Context, id string, kind entities.StateKind, since time.Time, until *time.Time) error {
	entity, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	state, err := entities.NewRelState(kind, since, until)
	if err != nil {
		return err
	}

	if kind == entities.StateRoot {
		root, err := r.store.FindRootEntity(ctx)
		if err != nil {
			return fmt.Errorf("looking up root entity: %w", err)
		}
		if root != nil && root.ID != id {
			return fmt.Errorf("%w: held by %q (%s)", entities.ErrDuplicateRoot, root.Name, root.ID)
		}
	}

	old := entity.State
	entity.State = state
	entity.UpdatedAt = r.now()
	if err := r.store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}

	payload := fmt.Sprintf("state %s -> %s", old, state)
	return r.emitLog(ctx, entity.ID, entities.MsgStateChanged, payload)
}

// ScheduleAction sets the entity's follow-up note and date. Either may be
// set on its own; calling with an empty note and a nil date clears the
// schedule and records it as resolved.
func (r *Registry) ScheduleAction(ctx context.Context, id, note string, date *time.Time) error {
	entity, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	now := r.now()
	if note == "" && date == nil {
		entity.NextActionNote = ""
		entity.NextActionDate = nil
		entity.UpdatedAt = now
		if err := r.store.SaveEntity(ctx, entity); err != nil {
			return fmt.Errorf("saving entity: %w", err)
		}
		return r.emitLog(ctx, entity.ID, entities.MsgResolved, "next action cleared")
	}

	entity.NextActionNote = note
	if date != nil {
		d := entities.DateOnly(*date)
		entity.NextActionDate = &d
	} else {
		entity.NextActionDate = nil
	}
	entity.UpdatedAt = now
	if err := r.store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}

	payload := note
	if entity.NextActionDate != nil {
		payload = fmt.Sprintf("%s due %s", note, entity.NextActionDate.Format(entities.DateFormat))
	}
	actors, err := r.systemActors(ctx, entity.ID)
	if err != nil {
		return err
	}
	event := entities.NewActionEvent(now, entities.MsgScheduled, payload, actors...)
	if _, err := r.store.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// PostponeAction moves an existing follow-up date. Postponements are logged
// under their own message so the review heuristics can spot avoidance.
func (r *Registry) PostponeAction(ctx context.Context, id string, date time.Time) error {
	entity, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !entity.HasNextAction() {
		return fmt.Errorf("entity %q has no scheduled action to postpone", entity.Name)
	}

	old := *entity.NextActionDate
	d := entities.DateOnly(date)
	entity.NextActionDate = &d
	entity.UpdatedAt = r.now()
	if err := r.store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}

	payload := fmt.Sprintf("due %s -> %s", old.Format(entities.DateFormat), d.Format(entities.DateFormat))
	return r.emitLog(ctx, entity.ID, entities.MsgPostponed, payload)
}

// Lookup finds an entity by id, failing with entities.ErrUnknownEntity when
// it does not exist.
func (r *Registry) Lookup(ctx context.Context, id string) (*entities.Entity, error) {
	return r.lookup(ctx, id)
}

// FindByName finds entities whose name contains the fragment. Names are not
// unique, so the result is a slice.
func (r *Registry) FindByName(ctx context.Context, name string) ([]*entities.Entity, error) {
	return r.store.FindEntitiesByName(ctx, name)
}

// List returns entities ordered by name. A limit <= 0 returns all.
func (r *Registry) List(ctx context.Context, limit, offset int) ([]*entities.Entity, error) {
	return r.store.ListEntities(ctx, limit, offset)
}

// Sponsored returns the entities directly sponsored by the given entity.
func (r *Registry) Sponsored(ctx context.Context, sponsorID string) ([]*entities.Entity, error) {
	return r.store.FindEntitiesBySponsor(ctx, sponsorID)
}

func (r *Registry) lookup(ctx context.Context, id string) (*entities.Entity, error) {
	entity, err := r.store.FindEntityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up entity: %w", err)
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownEntity, id)
	}
	return entity, nil
}

// systemActors builds the actor list for a system-emitted event: the
// landscape owner as recorded_by when one is set, plus the subject.
func (r *Registry) systemActors(ctx context.Context, subjectID string) ([]entities.Actor, error) {
	ownerID, err := r.store.GetMeta(ctx, MetaOwnerID)
	if err != nil {
		return nil, fmt.Errorf("reading owner: %w", err)
	}
	actors := make([]entities.Actor, 0, 2)
	if ownerID != "" && ownerID != subjectID {
		actors = append(actors, entities.Actor{EntityID: ownerID, Role: entities.RoleRecordedBy})
	}
	actors = append(actors, entities.Actor{EntityID: subjectID, Role: entities.RoleSubject})
	return actors, nil
}

func (r *Registry) emitLog(ctx context.Context, subjectID, message, payload string) error {
	actors, err := r.systemActors(ctx, subjectID)
	if err != nil {
		return err
	}
	event := entities.NewLogEvent(r.now(), message, payload, actors...)
	if _, err := r.store.AppendEvent(ctx, &event); err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}
