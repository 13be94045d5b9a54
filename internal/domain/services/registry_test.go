package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/mocks"
	"github.com/seralba/landscape/internal/domain/ports"
)

func fixedClock(t time.Time) ports.Clock {
	return func() time.Time { return t }
}

func testDate(s string) time.Time {
	t, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func testDatePtr(s string) *time.Time {
	d := testDate(s)
	return &d
}

// seedEntity puts an entity straight into the store, bypassing the service.
func seedEntity(t *testing.T, store *mocks.Store, id, name string, sponsorID string) *entities.Entity {
	t.Helper()
	e := &entities.Entity{
		ID:        id,
		Name:      name,
		Kind:      entities.KindPerson,
		SponsorID: sponsorID,
		State: entities.RelState{
			Kind:  entities.StateActive,
			Range: &entities.TemporalRange{Since: testDate("2024-01-01")},
		},
		CreatedAt: testDate("2024-01-01"),
		UpdatedAt: testDate("2024-01-01"),
	}
	require.NoError(t, store.SaveEntity(context.Background(), e))
	return e
}

func TestRegistry_Create(t *testing.T) {
	now := testDate("2024-03-15")

	t.Run("successful creation", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		entity, err := registry.Create(ctx, "Alice", entities.KindPerson, "")
		require.NoError(t, err)
		require.NotNil(t, entity)

		assert.NotEmpty(t, entity.ID)
		assert.Equal(t, "Alice", entity.Name)
		assert.Equal(t, entities.KindPerson, entity.Kind)
		assert.Empty(t, entity.SponsorID)
		assert.Equal(t, entities.StateActive, entity.State.Kind)
		require.NotNil(t, entity.State.Range)
		assert.Equal(t, testDate("2024-03-15"), entity.State.Range.Since)

		// A created event is logged with the new entity as subject.
		require.Len(t, store.Events, 1)
		assert.Equal(t, entities.MsgCreated, store.Events[0].Message)
		assert.Equal(t, entities.EventLog, store.Events[0].Kind)
		assert.True(t, store.Events[0].Involves(entity.ID))
	})

	t.Run("name is trimmed and required", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		entity, err := registry.Create(ctx, "  Bob  ", entities.KindPerson, "")
		require.NoError(t, err)
		assert.Equal(t, "Bob", entity.Name)

		_, err = registry.Create(ctx, "   ", entities.KindPerson, "")
		require.Error(t, err)
	})

	t.Run("sponsor must exist", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		_, err := registry.Create(ctx, "Alice", entities.KindPerson, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrInvalidSponsor)
	})

	t.Run("owner is recorded on the created event", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		owner := seedEntity(t, store, "owner", "Owner", "")
		require.NoError(t, store.SetMeta(ctx, MetaOwnerID, owner.ID))

		entity, err := registry.Create(ctx, "Alice", entities.KindPerson, owner.ID)
		require.NoError(t, err)

		require.Len(t, store.Events, 1)
		require.Len(t, store.Events[0].Actors, 2)
		assert.Equal(t, entities.Actor{EntityID: owner.ID, Role: entities.RoleRecordedBy}, store.Events[0].Actors[0])
		assert.Equal(t, entities.Actor{EntityID: entity.ID, Role: entities.RoleSubject}, store.Events[0].Actors[1])
	})
}

func TestRegistry_SetSponsor(t *testing.T) {
	now := testDate("2024-03-15")

	t.Run("successful change", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		seedEntity(t, store, "b", "Bob", "")

		require.NoError(t, registry.SetSponsor(ctx, "b", "a"))

		got, err := store.FindEntityByID(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "a", got.SponsorID)

		require.Len(t, store.Events, 1)
		assert.Equal(t, entities.MsgSponsorChanged, store.Events[0].Message)
	})

	t.Run("empty sponsor detaches", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		seedEntity(t, store, "b", "Bob", "a")

		require.NoError(t, registry.SetSponsor(ctx, "b", ""))

		got, err := store.FindEntityByID(ctx, "b")
		require.NoError(t, err)
		assert.Empty(t, got.SponsorID)
	})

	t.Run("self sponsorship is rejected", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		err := registry.SetSponsor(ctx, "a", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrInvalidSponsor)
	})

	t.Run("direct cycle is rejected", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		seedEntity(t, store, "b", "Bob", "a")

		err := registry.SetSponsor(ctx, "a", "b")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrCycleDetected)
	})

	t.Run("transitive cycle is rejected", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		seedEntity(t, store, "b", "Bob", "a")
		seedEntity(t, store, "c", "Carol", "b")

		err := registry.SetSponsor(ctx, "a", "c")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrCycleDetected)

		// The failed attempt must not have changed anything.
		got, err := store.FindEntityByID(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, got.SponsorID)
	})

	t.Run("unknown entity and unknown sponsor", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		err := registry.SetSponsor(ctx, "missing", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrUnknownEntity)

		err = registry.SetSponsor(ctx, "a", "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrInvalidSponsor)
	})
}

// TestRegistry_SponsorshipStaysAcyclic drives a randomized sequence of
// sponsor changes and checks that every chain in the resulting forest
// terminates.
func TestRegistry_SponsorshipStaysAcyclic(t *testing.T) {
	store := mocks.NewStore()
	registry := NewRegistry(store, fixedClock(testDate("2024-03-15")))
	ctx := context.Background()

	const n = 30
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("e%d", i)
		seedEntity(t, store, ids[i], fmt.Sprintf("Entity %d", i), "")
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		child := ids[rng.Intn(n)]
		sponsor := ids[rng.Intn(n)]
		err := registry.SetSponsor(ctx, child, sponsor)
		if err != nil {
			// Only the validation errors are acceptable.
			require.True(t,
				errors.Is(err, entities.ErrCycleDetected) || errors.Is(err, entities.ErrInvalidSponsor),
				"unexpected error: %v", err)
		}
	}

	for _, id := range ids {
		seen := map[string]bool{}
		current := id
		for current != "" {
			require.False(t, seen[current], "cycle through %s", current)
			seen[current] = true
			e, err := store.FindEntityByID(ctx, current)
			require.NoError(t, err)
			require.NotNil(t, e)
			current = e.SponsorID
		}
	}
}

func TestRegistry_TransitionState(t *testing.T) {
	now := testDate("2024-03-15")

	t.Run("successful transition", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		err := registry.TransitionState(ctx, "a", entities.StateFormer, testDate("2024-01-01"), testDatePtr("2024-03-01"))
		require.NoError(t, err)

		got, err := store.FindEntityByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, entities.StateFormer, got.State.Kind)
		require.NotNil(t, got.State.Range)
		assert.Equal(t, testDate("2024-01-01"), got.State.Range.Since)
		require.NotNil(t, got.State.Range.Until)
		assert.Equal(t, testDate("2024-03-01"), *got.State.Range.Until)

		require.Len(t, store.Events, 1)
		assert.Equal(t, entities.MsgStateChanged, store.Events[0].Message)
	})

	t.Run("invalid range is rejected", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		err := registry.TransitionState(ctx, "a", entities.StatePassive, testDate("2024-03-01"), testDatePtr("2024-01-01"))
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrInvalidTemporalRange)

		// Nothing saved, nothing logged.
		got, _ := store.FindEntityByID(ctx, "a")
		assert.Equal(t, entities.StateActive, got.State.Kind)
		assert.Empty(t, store.Events)
	})

	t.Run("root is a singleton", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		seedEntity(t, store, "b", "Bob", "")

		require.NoError(t, registry.TransitionState(ctx, "a", entities.StateRoot, now, nil))

		err := registry.TransitionState(ctx, "b", entities.StateRoot, now, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrDuplicateRoot)
	})

	t.Run("re-asserting root on the holder is allowed", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		require.NoError(t, registry.TransitionState(ctx, "a", entities.StateRoot, now, nil))
		require.NoError(t, registry.TransitionState(ctx, "a", entities.StateRoot, now, nil))

		got, _ := store.FindEntityByID(ctx, "a")
		assert.Equal(t, entities.StateRoot, got.State.Kind)
		assert.Nil(t, got.State.Range)
	})
}

func TestRegistry_ScheduleAction(t *testing.T) {
	now := testDate("2024-03-15")

	t.Run("schedule with note and date", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		due := testDate("2024-04-01")
		require.NoError(t, registry.ScheduleAction(ctx, "a", "follow up", &due))

		got, _ := store.FindEntityByID(ctx, "a")
		assert.Equal(t, "follow up", got.NextActionNote)
		require.NotNil(t, got.NextActionDate)
		assert.Equal(t, due, *got.NextActionDate)

		require.Len(t, store.Events, 1)
		assert.Equal(t, entities.EventAction, store.Events[0].Kind)
		assert.Equal(t, entities.MsgScheduled, store.Events[0].Message)
	})

	t.Run("clearing records resolution", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		due := testDate("2024-04-01")
		require.NoError(t, registry.ScheduleAction(ctx, "a", "follow up", &due))

		require.NoError(t, registry.ScheduleAction(ctx, "a", "", nil))

		got, _ := store.FindEntityByID(ctx, "a")
		assert.Empty(t, got.NextActionNote)
		assert.Nil(t, got.NextActionDate)

		require.Len(t, store.Events, 2)
		assert.Equal(t, entities.MsgResolved, store.Events[1].Message)
		assert.Equal(t, entities.EventLog, store.Events[1].Kind)
	})

	t.Run("note without date is allowed but unscheduled", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		require.NoError(t, registry.ScheduleAction(ctx, "a", "think about this", nil))

		got, _ := store.FindEntityByID(ctx, "a")
		assert.Equal(t, "think about this", got.NextActionNote)
		assert.False(t, got.HasNextAction())
	})
}

func TestRegistry_PostponeAction(t *testing.T) {
	now := testDate("2024-03-15")

	t.Run("postpone moves the date and logs it", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")
		due := testDate("2024-04-01")
		require.NoError(t, registry.ScheduleAction(ctx, "a", "follow up", &due))

		require.NoError(t, registry.PostponeAction(ctx, "a", testDate("2024-04-15")))

		got, _ := store.FindEntityByID(ctx, "a")
		require.NotNil(t, got.NextActionDate)
		assert.Equal(t, testDate("2024-04-15"), *got.NextActionDate)
		assert.Equal(t, "follow up", got.NextActionNote)

		require.Len(t, store.Events, 2)
		assert.Equal(t, entities.MsgPostponed, store.Events[1].Message)
	})

	t.Run("nothing scheduled to postpone", func(t *testing.T) {
		store := mocks.NewStore()
		registry := NewRegistry(store, fixedClock(now))
		ctx := context.Background()

		seedEntity(t, store, "a", "Alice", "")

		err := registry.PostponeAction(ctx, "a", testDate("2024-04-15"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no scheduled action")
	})
}

func TestRegistry_Lookup(t *testing.T) {
	store := mocks.NewStore()
	registry := NewRegistry(store, nil)
	ctx := context.Background()

	seedEntity(t, store, "a", "Alice", "")

	got, err := registry.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = registry.Lookup(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrUnknownEntity)
}
