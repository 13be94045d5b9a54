package entities

import (
	"fmt"
	"strings"
	"time"
)

// EventKind distinguishes audit entries from scheduled-action entries.
type EventKind string

const (
	// EventLog records auditing facts: creation, field changes,
	// relationship changes, user notes.
	EventLog EventKind = "log"
	// EventAction records changes to an entity's scheduled follow-up.
	EventAction EventKind = "action"
)

// SubKindDelay marks an action event synthesized when a follow-up date has
// passed without resolution. Delay events are derived by the health
// evaluator and only stored when a caller materializes them explicitly.
const SubKindDelay = "delay"

// Role describes how an entity participates in an event. Roles are not
// mutually exclusive: the same event may list an entity under several.
type Role string

const (
	RoleRecordedBy Role = "recorded_by"
	RoleSubject    Role = "subject"
	RoleLead       Role = "lead"
	RoleStarring   Role = "starring"
	RoleBackground Role = "background"
)

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleRecordedBy:
		return RoleRecordedBy, nil
	case RoleSubject:
		return RoleSubject, nil
	case RoleLead:
		return RoleLead, nil
	case RoleStarring:
		return RoleStarring, nil
	case RoleBackground:
		return RoleBackground, nil
	default:
		return "", fmt.Errorf("unknown role %q (recorded_by, subject, lead, starring, background)", s)
	}
}

// Actor is an (entity, role) pair attached to an event. Order within an
// event is preserved.
type Actor struct {
	EntityID string `json:"entity_id"`
	Role     Role   `json:"role"`
}

// Event message verbs emitted by the core services. Messages are short and
// machine-matchable so read-side rules (review heuristics, filters) can key
// on them; Payload carries the human detail.
const (
	MsgCreated        = "created"
	MsgSponsorChanged = "sponsor-changed"
	MsgStateChanged   = "state-changed"
	MsgScheduled      = "scheduled"
	MsgResolved       = "resolved"
	MsgPostponed      = "postponed"
	MsgDelayed        = "delayed"
	MsgConnected      = "connected"
	MsgDisconnected   = "disconnected"
	MsgReview         = "review"
)

// Event is an immutable, timestamped record of an occurrence involving one
// or more entities. The store assigns ids monotonically on append; insertion
// order defines the canonical timeline, and the timestamp may be backdated
// for audit entries recorded after the fact.
type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	SubKind   string    `json:"sub_kind,omitempty"`
	Message   string    `json:"message"`
	Payload   string    `json:"payload,omitempty"`
	Actors    []Actor   `json:"actors"`
}

// NewLogEvent builds an unstored audit event.
func NewLogEvent(ts time.Time, message, payload string, actors ...Actor) Event {
	return Event{
		Timestamp: ts,
		Kind:      EventLog,
		Message:   message,
		Payload:   payload,
		Actors:    actors,
	}
}

// NewActionEvent builds an unstored action event.
func NewActionEvent(ts time.Time, message, payload string, actors ...Actor) Event {
	return Event{
		Timestamp: ts,
		Kind:      EventAction,
		Message:   message,
		Payload:   payload,
		Actors:    actors,
	}
}

// Involves reports whether the event lists the entity under any role.
func (e *Event) Involves(entityID string) bool {
	for _, a := range e.Actors {
		if a.EntityID == entityID {
			return true
		}
	}
	return false
}

// EventFilter narrows an event query. Zero-valued fields match everything;
// results are always returned in ascending id order.
type EventFilter struct {
	EntityID string
	Role     Role
	Kind     EventKind
	Since    *time.Time
	Until    *time.Time
}

// Matches reports whether an event satisfies the filter.
func (f EventFilter) Matches(e *Event) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	if f.EntityID == "" && f.Role == "" {
		return true
	}
	for _, a := range e.Actors {
		if f.EntityID != "" && a.EntityID != f.EntityID {
			continue
		}
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		return true
	}
	return false
}
