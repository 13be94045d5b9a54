package entities

import (
	"fmt"
	"strings"
	"time"
)

// Relationship is a labeled directed edge between two entities, independent
// of sponsorship. Distinct labels between the same pair are distinct edges;
// an identical (source, target, label) triple exists at most once. A mutual
// relationship is a single edge with the Bidirectional flag rather than two
// independently mutable copies.
type Relationship struct {
	ID            string    `json:"id"`
	SourceID      string    `json:"source_id"`
	TargetID      string    `json:"target_id"`
	Label         string    `json:"label"`
	Bidirectional bool      `json:"bidirectional"`
	CreatedAt     time.Time `json:"created_at"`
}

// Direction selects which edges count as neighbors of an entity.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ParseDirection converts user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionOutgoing:
		return DirectionOutgoing, nil
	case DirectionIncoming:
		return DirectionIncoming, nil
	case DirectionBoth:
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("unknown direction %q (outgoing, incoming, both)", s)
	}
}
