package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/mocks"
	"github.com/seralba/landscape/internal/domain/services"
)

func TestSnapshotHandler_RoundTrip(t *testing.T) {
	source := mocks.NewStore()
	clock := testClock("2024-01-01")
	registry := services.NewRegistry(source, clock)
	graph := services.NewGraph(source, clock)
	initHandler := NewInitHandler(source, registry, clock)
	ctx := context.Background()

	result, err := initHandler.HandleInit(ctx, "Me", "home")
	require.NoError(t, err)
	alice, err := registry.Create(ctx, "Alice", entities.KindPerson, result.Owner.ID)
	require.NoError(t, err)
	_, err = graph.Connect(ctx, result.Owner.ID, alice.ID, "knows", true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewSnapshotHandler(source).HandleExport(ctx, &buf))

	target := mocks.NewStore()
	snap, err := NewSnapshotHandler(target).HandleImport(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "home", snap.Meta.Name)
	assert.Equal(t, result.Owner.ID, snap.Meta.OwnerID)

	// Entity, relationship and event counts survive the trip.
	sourceEntities, err := source.ListEntities(ctx, 0, 0)
	require.NoError(t, err)
	targetEntities, err := target.ListEntities(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, sourceEntities, targetEntities)

	sourceEvents, err := source.QueryEvents(ctx, entities.EventFilter{})
	require.NoError(t, err)
	targetEvents, err := target.QueryEvents(ctx, entities.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, sourceEvents, targetEvents)

	rels, err := target.ListRelationships(ctx)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestSnapshotHandler_ImportRefusesNonEmpty(t *testing.T) {
	store := mocks.NewStore()
	clock := testClock("2024-01-01")
	registry := services.NewRegistry(store, clock)
	ctx := context.Background()

	_, err := registry.Create(ctx, "Alice", entities.KindPerson, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewSnapshotHandler(store).HandleExport(ctx, &buf))

	_, err = NewSnapshotHandler(store).HandleImport(ctx, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty")
}
