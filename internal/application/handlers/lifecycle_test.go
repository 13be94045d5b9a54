package handlers

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/domain/ports"
	"github.com/seralba/landscape/internal/domain/services"
	"github.com/seralba/landscape/internal/infrastructure/config"
	"github.com/seralba/landscape/internal/infrastructure/relationaldb/sqlite"
)

// TestLifecycle runs a full landscape session against the real sqlite store:
// init, create, relate, schedule, postpone, evaluate, export and re-import.
func TestLifecycle(t *testing.T) {
	openStore := func(t *testing.T) ports.Store {
		t.Helper()
		repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "landscape.db")})
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		require.NoError(t, repo.EnsureSchema(context.Background()))
		return repo
	}

	store := openStore(t)
	clock := testClock("2024-01-01")
	registry := services.NewRegistry(store, clock)
	graph := services.NewGraph(store, clock)
	eventLog := services.NewEventLog(store, clock)
	health := services.NewHealth(store)

	entityHandler := NewEntityHandler(registry, graph, eventLog)
	relHandler := NewRelationshipHandler(graph, entityHandler)
	eventHandler := NewEventHandler(eventLog, entityHandler)
	healthHandler := NewHealthHandler(health, eventLog, registry)
	ctx := context.Background()

	// Bootstrap.
	result, err := NewInitHandler(store, registry, clock).HandleInit(ctx, "Me", "home")
	require.NoError(t, err)
	require.Equal(t, entities.StateRoot, result.Root.State.Kind)

	// Grow the landscape.
	alice, err := entityHandler.HandleCreate(ctx, "Alice", "person", "Me")
	require.NoError(t, err)
	_, err = entityHandler.HandleCreate(ctx, "Office lease", "object", "Me")
	require.NoError(t, err)
	_, err = relHandler.HandleConnect(ctx, "Alice", "manages", "Office lease", false)
	require.NoError(t, err)

	due := mustDate("2023-12-01")
	require.NoError(t, entityHandler.HandleSchedule(ctx, "Alice", "renew contract", &due))
	require.NoError(t, entityHandler.HandlePostpone(ctx, "Alice", mustDate("2023-12-15")))

	_, err = eventHandler.HandleRecord(ctx, "Alice", "note", "asked for a draft", time.Time{})
	require.NoError(t, err)

	// The owner recorded the note; the log reflects it.
	history, err := eventHandler.HandleQuery(ctx, "Alice", entities.RoleSubject, "", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, "asked for a draft", last.Payload)
	assert.True(t, last.Involves(result.Owner.ID))

	// Past the grace period at evaluation time.
	entries, err := healthHandler.HandleEvaluate(ctx, mustDate("2024-01-01"), 7*24*time.Hour, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].Entity.ID)
	assert.Equal(t, entities.StatusOverdue, entries[0].Status)

	// Export and re-import into a fresh store; the timeline survives.
	var buf bytes.Buffer
	require.NoError(t, NewSnapshotHandler(store).HandleExport(ctx, &buf))

	restored := openStore(t)
	snap, err := NewSnapshotHandler(restored).HandleImport(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "home", snap.Meta.Name)

	originalEvents, err := store.QueryEvents(ctx, entities.EventFilter{})
	require.NoError(t, err)
	restoredEvents, err := restored.QueryEvents(ctx, entities.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, originalEvents, restoredEvents)

	root, err := restored.FindRootEntity(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, result.Root.ID, root.ID)
}
