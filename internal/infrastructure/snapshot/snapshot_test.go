package snapshot

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seralba/landscape/internal/domain/entities"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	since, err := entities.ParseDate("2024-01-01")
	require.NoError(t, err)
	due, err := entities.ParseDate("2024-04-01")
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	return &Snapshot{
		Meta: Meta{Name: "home", OwnerID: "owner"},
		Entities: []*entities.Entity{
			{
				ID: "owner", Name: "Me", Kind: entities.KindPerson,
				State:     entities.RelState{Kind: entities.StateRoot},
				CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: "a", Name: "Alice", Kind: entities.KindPerson, SponsorID: "owner",
				State: entities.RelState{
					Kind:  entities.StateActive,
					Range: &entities.TemporalRange{Since: since},
				},
				NextActionNote: "call back", NextActionDate: &due,
				CreatedAt: now, UpdatedAt: now,
			},
		},
		Relationships: []entities.Relationship{
			{ID: "r1", SourceID: "owner", TargetID: "a", Label: "knows", Bidirectional: true, CreatedAt: now},
		},
		Events: []entities.Event{
			{
				ID: 1, Timestamp: now, Kind: entities.EventLog, Message: entities.MsgCreated,
				Actors: []entities.Actor{{EntityID: "a", Role: entities.RoleSubject}},
			},
			{
				ID: 2, Timestamp: now.Add(time.Hour), Kind: entities.EventAction,
				SubKind: entities.SubKindDelay, Message: entities.MsgDelayed, Payload: "late by 3d",
				Actors: []entities.Actor{{EntityID: "a", Role: entities.RoleSubject}},
			},
		},
	}
}

func TestWriteRead(t *testing.T) {
	t.Run("round trip preserves everything including event order", func(t *testing.T) {
		snap := testSnapshot(t)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, snap))

		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, snap, got)
	})

	t.Run("one JSON object per line, meta first", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, testSnapshot(t)))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 6)
		assert.Contains(t, lines[0], `"type":"meta"`)
		assert.Contains(t, lines[5], `"type":"event"`)
	})

	t.Run("empty lines are skipped", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, testSnapshot(t)))
		padded := strings.ReplaceAll(buf.String(), "\n", "\n\n")

		got, err := Read(strings.NewReader(padded))
		require.NoError(t, err)
		assert.Len(t, got.Entities, 2)
	})

	t.Run("unknown record type reports the line number", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"type":"mystery"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
		assert.Contains(t, err.Error(), "mystery")
	})

	t.Run("malformed json reports the line number", func(t *testing.T) {
		input := `{"type":"meta","meta":{}}` + "\n" + `{not json`
		_, err := Read(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("record without its body is rejected", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"type":"entity"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entity record")
	})
}
