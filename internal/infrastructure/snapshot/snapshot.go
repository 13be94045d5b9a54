// Package snapshot encodes and decodes a full landscape as JSON lines, one
// record per line. Events are written and read in ascending id order so the
// log's insertion order survives a round trip, and the format is
// line-appendable: new events can be exported incrementally by writing new
// lines only.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/seralba/landscape/internal/domain/entities"
)

// Record types tagging each line of a snapshot stream.
const (
	RecordMeta         = "meta"
	RecordEntity       = "entity"
	RecordRelationship = "relationship"
	RecordEvent        = "event"
)

// Meta is the header line of a snapshot.
type Meta struct {
	Name    string `json:"name,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Snapshot is a fully decoded landscape.
type Snapshot struct {
	Meta          Meta
	Entities      []*entities.Entity
	Relationships []entities.Relationship
	Events        []entities.Event
}

// line is the envelope written for every record.
type line struct {
	Type         string                 `json:"type"`
	Meta         *Meta                  `json:"meta,omitempty"`
	Entity       *entities.Entity       `json:"entity,omitempty"`
	Relationship *entities.Relationship `json:"relationship,omitempty"`
	Event        *entities.Event        `json:"event,omitempty"`
}

// Write streams the snapshot to w: the meta header first, then entities,
// relationships and events in their stored order.
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)

	if err := enc.Encode(line{Type: RecordMeta, Meta: &snap.Meta}); err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	for _, e := range snap.Entities {
		if err := enc.Encode(line{Type: RecordEntity, Entity: e}); err != nil {
			return fmt.Errorf("encoding entity %s: %w", e.ID, err)
		}
	}
	for i := range snap.Relationships {
		if err := enc.Encode(line{Type: RecordRelationship, Relationship: &snap.Relationships[i]}); err != nil {
			return fmt.Errorf("encoding relationship %s: %w", snap.Relationships[i].ID, err)
		}
	}
	for i := range snap.Events {
		if err := enc.Encode(line{Type: RecordEvent, Event: &snap.Events[i]}); err != nil {
			return fmt.Errorf("encoding event %d: %w", snap.Events[i].ID, err)
		}
	}
	return nil
}

// Read decodes a snapshot stream, preserving the order records appear in.
func Read(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	num := 0
	for scanner.Scan() {
		num++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("line %d: %w", num, err)
		}
		switch l.Type {
		case RecordMeta:
			if l.Meta != nil {
				snap.Meta = *l.Meta
			}
		case RecordEntity:
			if l.Entity == nil {
				return nil, fmt.Errorf("line %d: entity record without entity", num)
			}
			snap.Entities = append(snap.Entities, l.Entity)
		case RecordRelationship:
			if l.Relationship == nil {
				return nil, fmt.Errorf("line %d: relationship record without relationship", num)
			}
			snap.Relationships = append(snap.Relationships, *l.Relationship)
		case RecordEvent:
			if l.Event == nil {
				return nil, fmt.Errorf("line %d: event record without event", num)
			}
			snap.Events = append(snap.Events, *l.Event)
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", num, l.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return snap, nil
}
