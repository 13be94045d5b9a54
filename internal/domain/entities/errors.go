package entities

import "errors"

// Domain errors. Services wrap these with context via fmt.Errorf("%w", ...)
// and callers match them with errors.Is.
var (
	// ErrUnknownEntity is returned when a referenced entity does not exist.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidSponsor is returned when a sponsor reference is missing or
	// points at the entity itself.
	ErrInvalidSponsor = errors.New("invalid sponsor")

	// ErrCycleDetected is returned when a sponsor change would make the
	// sponsorship forest cyclic.
	ErrCycleDetected = errors.New("sponsorship cycle detected")

	// ErrDuplicateRoot is returned when a second entity tries to take the
	// root state.
	ErrDuplicateRoot = errors.New("root state already held")

	// ErrInvalidTemporalRange is returned when a range ends before it starts.
	ErrInvalidTemporalRange = errors.New("invalid temporal range")

	// ErrSelfRelationship is returned when a relationship connects an entity
	// to itself.
	ErrSelfRelationship = errors.New("self relationship")

	// ErrNotFound is returned when a referenced relationship does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownActor is returned when an event lists no actors or an actor
	// entity that does not exist.
	ErrUnknownActor = errors.New("unknown actor")
)
