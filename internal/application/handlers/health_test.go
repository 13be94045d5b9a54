package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/mocks"
	"github.com/seralba/landscape/internal/domain/services"
)

func newTestHealthHandler(store *mocks.Store) (*HealthHandler, *services.Registry) {
	clock := testClock("2024-01-01")
	registry := services.NewRegistry(store, clock)
	eventLog := services.NewEventLog(store, clock)
	health := services.NewHealth(store)
	return NewHealthHandler(health, eventLog, registry), registry
}

func mustDate(s string) time.Time {
	t, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHealthHandler_HandleEvaluate(t *testing.T) {
	grace := 5 * 24 * time.Hour

	t.Run("sorted by severity then due date", func(t *testing.T) {
		store := mocks.NewStore()
		handler, registry := newTestHealthHandler(store)
		ctx := context.Background()

		schedule := func(name, due string) {
			e, err := registry.Create(ctx, name, entities.KindPerson, "")
			require.NoError(t, err)
			d := mustDate(due)
			require.NoError(t, registry.ScheduleAction(ctx, e.ID, "follow up", &d))
		}
		schedule("On Track", "2024-02-01")
		schedule("Overdue Old", "2023-11-01")
		schedule("Overdue New", "2023-12-01")
		schedule("Delayed", "2023-12-30")

		entries, err := handler.HandleEvaluate(ctx, mustDate("2024-01-01"), grace, false)
		require.NoError(t, err)
		require.Len(t, entries, 4)

		assert.Equal(t, "Overdue Old", entries[0].Entity.Name)
		assert.Equal(t, entities.StatusOverdue, entries[0].Status)
		assert.Equal(t, "Overdue New", entries[1].Entity.Name)
		assert.Equal(t, "Delayed", entries[2].Entity.Name)
		assert.Equal(t, entities.StatusDelayed, entries[2].Status)
		assert.Equal(t, "On Track", entries[3].Entity.Name)
		assert.Equal(t, entities.StatusOnTrack, entries[3].Status)
	})

	t.Run("materialize appends delay events", func(t *testing.T) {
		store := mocks.NewStore()
		handler, registry := newTestHealthHandler(store)
		ctx := context.Background()

		e, err := registry.Create(ctx, "Late", entities.KindPerson, "")
		require.NoError(t, err)
		d := mustDate("2023-11-01")
		require.NoError(t, registry.ScheduleAction(ctx, e.ID, "call back", &d))

		before, err := store.QueryEvents(ctx, entities.EventFilter{Kind: entities.EventAction})
		require.NoError(t, err)

		_, err = handler.HandleEvaluate(ctx, mustDate("2024-01-01"), grace, false)
		require.NoError(t, err)
		unchanged, err := store.QueryEvents(ctx, entities.EventFilter{Kind: entities.EventAction})
		require.NoError(t, err)
		assert.Len(t, unchanged, len(before))

		_, err = handler.HandleEvaluate(ctx, mustDate("2024-01-01"), grace, true)
		require.NoError(t, err)
		after, err := store.QueryEvents(ctx, entities.EventFilter{Kind: entities.EventAction})
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		assert.Equal(t, entities.SubKindDelay, after[len(after)-1].SubKind)
	})
}

func TestHealthHandler_HandleAgenda(t *testing.T) {
	store := mocks.NewStore()
	handler, registry := newTestHealthHandler(store)
	ctx := context.Background()

	e, err := registry.Create(ctx, "Alice", entities.KindPerson, "")
	require.NoError(t, err)
	d := mustDate("2024-01-10")
	require.NoError(t, registry.ScheduleAction(ctx, e.ID, "lunch", &d))

	agenda, err := handler.HandleAgenda(ctx, mustDate("2024-01-08"), mustDate("2024-01-15"))
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.Equal(t, "Alice", agenda[0].Name)
}
