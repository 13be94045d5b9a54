package entities

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies what an entity is. It is fixed at creation: downstream
// role assumptions depend on it and cannot be revised later.
type Kind string

const (
	KindPerson   Kind = "person"
	KindObject   Kind = "object"
	KindAbstract Kind = "abstract"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPerson:
		return KindPerson, nil
	case KindObject:
		return KindObject, nil
	case KindAbstract:
		return KindAbstract, nil
	default:
		return "", fmt.Errorf("unknown kind %q (person, object, abstract)", s)
	}
}

// StateKind is the lifecycle tag of an entity.
type StateKind string

const (
	// StateRoot marks the anchor of the landscape. At most one entity holds
	// it, and it carries no temporal range.
	StateRoot     StateKind = "root"
	StateActive   StateKind = "active"
	StatePassive  StateKind = "passive"
	StateFormer   StateKind = "former"
	StateDisabled StateKind = "disabled"
)

// ParseStateKind converts user input into a StateKind.
func ParseStateKind(s string) (StateKind, error) {
	switch StateKind(strings.ToLower(strings.TrimSpace(s))) {
	case StateRoot:
		return StateRoot, nil
	case StateActive:
		return StateActive, nil
	case StatePassive:
		return StatePassive, nil
	case StateFormer:
		return StateFormer, nil
	case StateDisabled:
		return StateDisabled, nil
	default:
		return "", fmt.Errorf("unknown state %q (root, active, passive, former, disabled)", s)
	}
}

// TemporalRange is a validated (start, optional end) date pair.
type TemporalRange struct {
	Since time.Time  `json:"since"`
	Until *time.Time `json:"until,omitempty"`
}

// Validate checks that the range does not end before it starts.
func (r TemporalRange) Validate() error {
	if r.Until != nil && r.Until.Before(r.Since) {
		return fmt.Errorf("%w: until %s before since %s",
			ErrInvalidTemporalRange, r.Until.Format(DateFormat), r.Since.Format(DateFormat))
	}
	return nil
}

// RelState is a tagged union over the lifecycle states. Root carries no
// range; the other four carry the range they have been in effect for.
type RelState struct {
	Kind  StateKind      `json:"kind"`
	Range *TemporalRange `json:"range,omitempty"`
}

// NewRelState builds a lifecycle state and validates its range. Root never
// carries a range, whatever the caller supplies.
func NewRelState(kind StateKind, since time.Time, until *time.Time) (RelState, error) {
	if kind == StateRoot {
		return RelState{Kind: StateRoot}, nil
	}
	rng := TemporalRange{Since: DateOnly(since)}
	if until != nil {
		u := DateOnly(*until)
		rng.Until = &u
	}
	if err := rng.Validate(); err != nil {
		return RelState{}, err
	}
	return RelState{Kind: kind, Range: &rng}, nil
}

// IsHistorical reports whether the state excludes the entity from health
// evaluation. Former and disabled entities are kept for auditing only.
func (s RelState) IsHistorical() bool {
	return s.Kind == StateFormer || s.Kind == StateDisabled
}

// String renders the state with its range, e.g. "active (2024-01-01 -)".
func (s RelState) String() string {
	if s.Range == nil {
		return string(s.Kind)
	}
	until := ""
	if s.Range.Until != nil {
		until = " " + s.Range.Until.Format(DateFormat)
	}
	return fmt.Sprintf("%s (%s -%s)", s.Kind, s.Range.Since.Format(DateFormat), until)
}

// Entity is a person, object, project or organization tracked in the
// landscape. Entities are never physically deleted; the disabled state
// substitutes for deletion so past events keep valid references.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// SponsorID points at the entity responsible for this one. Empty means
	// the entity stands on its own. The sponsor relation forms a forest:
	// out-degree at most one, no cycles.
	SponsorID string `json:"sponsor_id,omitempty"`

	State RelState `json:"state"`

	// NextActionNote and NextActionDate describe a scheduled follow-up.
	// Either may be set on its own, but health evaluation only considers
	// entities that have a date.
	NextActionNote string     `json:"next_action_note,omitempty"`
	NextActionDate *time.Time `json:"next_action_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasNextAction reports whether a follow-up date is scheduled.
func (e *Entity) HasNextAction() bool {
	return e.NextActionDate != nil
}

// DateFormat is the canonical day-granular date layout.
const DateFormat = "2006-01-02"

// DateOnly truncates a time to day granularity in UTC. Every temporal field
// except event timestamps is a date, not an instant.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a canonical yyyy-mm-dd date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
