package main

import (
	"context"
	"fmt"
	"os"

	"github.com/seralba/landscape/internal/application/handlers"
	"github.com/seralba/landscape/internal/domain/ports"
	"github.com/seralba/landscape/internal/domain/services"
	"github.com/seralba/landscape/internal/infrastructure/config"
	"github.com/seralba/landscape/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands. Only handlers are
// exposed - services and the store are wired internally.
type Deps struct {
	Config        *config.Config
	Entities      *handlers.EntityHandler
	Relationships *handlers.RelationshipHandler
	Events        *handlers.EventHandler
	Health        *handlers.HealthHandler
	Snapshot      *handlers.SnapshotHandler
	Init          *handlers.InitHandler
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return fn(buildDeps(cfg, store))
}

func buildDeps(cfg *config.Config, store ports.Store) *Deps {
	registry := services.NewRegistry(store, nil)
	graph := services.NewGraph(store, nil)
	eventLog := services.NewEventLog(store, nil)
	health := services.NewHealth(store)

	entityHandler := handlers.NewEntityHandler(registry, graph, eventLog)

	return &Deps{
		Config:        cfg,
		Entities:      entityHandler,
		Relationships: handlers.NewRelationshipHandler(graph, entityHandler),
		Events:        handlers.NewEventHandler(eventLog, entityHandler),
		Health:        handlers.NewHealthHandler(health, eventLog, registry),
		Snapshot:      handlers.NewSnapshotHandler(store),
		Init:          handlers.NewInitHandler(store, registry, nil),
	}
}
