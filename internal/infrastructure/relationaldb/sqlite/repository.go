// Package sqlite provides the SQLite implementation of the Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/seralba/landscape/internal/domain/entities"
	"github.com/seralba/landscape/internal/infrastructure/config"
)

// timestampFormat round-trips full timestamps losslessly; day-granular
// fields use entities.DateFormat, which also sorts lexicographically.
const timestampFormat = time.RFC3339Nano

// Repository implements ports.Store using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens (or creates) the database at the configured path.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Entities (people, objects, projects, organizations)
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		sponsor_id TEXT NOT NULL DEFAULT '',
		state_kind TEXT NOT NULL,
		state_since TEXT,
		state_until TEXT,
		next_action_note TEXT NOT NULL DEFAULT '',
		next_action_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
	CREATE INDEX IF NOT EXISTS idx_entities_sponsor ON entities(sponsor_id);
	CREATE INDEX IF NOT EXISTS idx_entities_state ON entities(state_kind);
	CREATE INDEX IF NOT EXISTS idx_entities_next_action ON entities(next_action_date);

	-- Relationship edges (directed multigraph, independent of sponsorship)
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		label TEXT NOT NULL,
		bidirectional INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(source_id, target_id, label)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);

	-- Append-only event log; the AUTOINCREMENT id is the canonical timeline
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		kind TEXT NOT NULL,
		sub_kind TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT ''
	);

	-- Ordered (entity, role) pairs per event
	CREATE TABLE IF NOT EXISTS event_actors (
		event_id INTEGER NOT NULL REFERENCES events(id),
		position INTEGER NOT NULL,
		entity_id TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY(event_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_event_actors_entity ON event_actors(entity_id);

	-- Landscape-level metadata (name, owner)
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveEntity inserts or updates an entity by id.
func (r *Repository) SaveEntity(ctx context.Context, entity *entities.Entity) error {
	query := `
		INSERT INTO entities (id, name, kind, sponsor_id, state_kind, state_since, state_until,
			next_action_note, next_action_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sponsor_id = excluded.sponsor_id,
			state_kind = excluded.state_kind,
			state_since = excluded.state_since,
			state_until = excluded.state_until,
			next_action_note = excluded.next_action_note,
			next_action_date = excluded.next_action_date,
			updated_at = excluded.updated_at
	`
	var since, until, nextAction any
	if entity.State.Range != nil {
		since = entity.State.Range.Since.Format(entities.DateFormat)
		if entity.State.Range.Until != nil {
			until = entity.State.Range.Until.Format(entities.DateFormat)
		}
	}
	if entity.NextActionDate != nil {
		nextAction = entity.NextActionDate.Format(entities.DateFormat)
	}

	_, err := r.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		string(entity.Kind),
		entity.SponsorID,
		string(entity.State.Kind),
		since,
		until,
		entity.NextActionNote,
		nextAction,
		entity.CreatedAt.UTC().Format(timestampFormat),
		entity.UpdatedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}
	return nil
}

const entityColumns = `id, name, kind, sponsor_id, state_kind, state_since, state_until,
	next_action_note, next_action_date, created_at, updated_at`

// FindEntityByID finds an entity by its id.
func (r *Repository) FindEntityByID(ctx context.Context, id string) (*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`
	rows, err := r.queryEntities(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindEntitiesByName finds entities whose name contains the fragment,
// case-insensitively, ordered by name.
func (r *Repository) FindEntitiesByName(ctx context.Context, name string) ([]*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities
		WHERE name LIKE ? ESCAPE '\' COLLATE NOCASE ORDER BY name, id`
	return r.queryEntities(ctx, query, "%"+escapeLike(name)+"%")
}

// ListEntities lists entities ordered by name. A limit <= 0 returns all.
func (r *Repository) ListEntities(ctx context.Context, limit, offset int) ([]*entities.Entity, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	query := `SELECT ` + entityColumns + ` FROM entities ORDER BY name, id LIMIT ? OFFSET ?`
	return r.queryEntities(ctx, query, limit, offset)
}

// FindEntitiesBySponsor lists the entities sponsored by the given id.
func (r *Repository) FindEntitiesBySponsor(ctx context.Context, sponsorID string) ([]*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE sponsor_id = ? ORDER BY name, id`
	return r.queryEntities(ctx, query, sponsorID)
}

// FindRootEntity returns the entity holding the root state, if any.
func (r *Repository) FindRootEntity(ctx context.Context) (*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE state_kind = ?`
	rows, err := r.queryEntities(ctx, query, string(entities.StateRoot))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindEntitiesWithNextAction lists entities with a follow-up date, ordered
// by that date ascending.
func (r *Repository) FindEntitiesWithNextAction(ctx context.Context) ([]*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities
		WHERE next_action_date IS NOT NULL ORDER BY next_action_date, name, id`
	return r.queryEntities(ctx, query)
}

// CountEntities returns the number of entities.
func (r *Repository) CountEntities(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

func (r *Repository) queryEntities(ctx context.Context, query string, args ...any) ([]*entities.Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var result []*entities.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return result, nil
}

func scanEntity(rows *sql.Rows) (*entities.Entity, error) {
	var (
		entity               entities.Entity
		kind, stateKind      string
		since, until         sql.NullString
		nextAction           sql.NullString
		createdAt, updatedAt string
	)
	err := rows.Scan(
		&entity.ID,
		&entity.Name,
		&kind,
		&entity.SponsorID,
		&stateKind,
		&since,
		&until,
		&entity.NextActionNote,
		&nextAction,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}

	entity.Kind = entities.Kind(kind)
	entity.State.Kind = entities.StateKind(stateKind)
	if since.Valid {
		s, err := entities.ParseDate(since.String)
		if err != nil {
			return nil, err
		}
		entity.State.Range = &entities.TemporalRange{Since: s}
		if until.Valid {
			u, err := entities.ParseDate(until.String)
			if err != nil {
				return nil, err
			}
			entity.State.Range.Until = &u
		}
	}
	if nextAction.Valid {
		d, err := entities.ParseDate(nextAction.String)
		if err != nil {
			return nil, err
		}
		entity.NextActionDate = &d
	}
	if entity.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if entity.UpdatedAt, err = time.Parse(timestampFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &entity, nil
}

// SaveRelationship inserts a relationship edge.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	query := `
		INSERT INTO relationships (id, source_id, target_id, label, bidirectional, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.SourceID,
		rel.TargetID,
		rel.Label,
		boolToInt(rel.Bidirectional),
		rel.CreatedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

const relationshipColumns = `id, source_id, target_id, label, bidirectional, created_at`

// FindRelationship finds the edge with the exact (source, target, label)
// triple.
func (r *Repository) FindRelationship(ctx context.Context, sourceID, targetID, label string) (*entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships
		WHERE source_id = ? AND target_id = ? AND label = ?`
	rels, err := r.queryRelationships(ctx, query, sourceID, targetID, label)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	rel := rels[0]
	return &rel, nil
}

// FindRelationshipsByEntity finds the edges visible from an entity in the
// given direction. A bidirectional edge is visible from both endpoints in
// either direction.
func (r *Repository) FindRelationshipsByEntity(ctx context.Context, entityID string, direction entities.Direction) ([]entities.Relationship, error) {
	var where string
	switch direction {
	case entities.DirectionOutgoing:
		where = `source_id = ? OR (bidirectional = 1 AND target_id = ?)`
	case entities.DirectionIncoming:
		where = `target_id = ? OR (bidirectional = 1 AND source_id = ?)`
	default:
		where = `source_id = ? OR target_id = ?`
	}
	query := `SELECT ` + relationshipColumns + ` FROM relationships
		WHERE ` + where + ` ORDER BY created_at, id`
	return r.queryRelationships(ctx, query, entityID, entityID)
}

// ListRelationships lists every edge ordered by creation time.
func (r *Repository) ListRelationships(ctx context.Context) ([]entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships ORDER BY created_at, id`
	return r.queryRelationships(ctx, query)
}

// DeleteRelationship removes an edge by id.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	return nil
}

// CountRelationships returns the number of edges.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

func (r *Repository) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var result []entities.Relationship
	for rows.Next() {
		var (
			rel           entities.Relationship
			bidirectional int
			createdAt     string
		)
		if err := rows.Scan(&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Label, &bidirectional, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rel.Bidirectional = bidirectional != 0
		if rel.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return result, nil
}

// AppendEvent appends an event with its actors in one transaction and
// returns the assigned id. Nothing is ever updated or deleted here: the
// events table only grows.
func (r *Repository) AppendEvent(ctx context.Context, event *entities.Event) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (timestamp, kind, sub_kind, message, payload) VALUES (?, ?, ?, ?, ?)`,
		event.Timestamp.UTC().UnixNano(),
		string(event.Kind),
		event.SubKind,
		event.Message,
		event.Payload,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading event id: %w", err)
	}

	for i, actor := range event.Actors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO event_actors (event_id, position, entity_id, role) VALUES (?, ?, ?, ?)`,
			id, i, actor.EntityID, string(actor.Role),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting event actor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing event: %w", err)
	}
	return id, nil
}

// QueryEvents returns matching events in ascending id order, with timestamp
// ties resolved by insertion order because the id is the sort key.
func (r *Repository) QueryEvents(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Kind != "" {
		conds = append(conds, `e.kind = ?`)
		args = append(args, string(filter.Kind))
	}
	if filter.Since != nil {
		conds = append(conds, `e.timestamp >= ?`)
		args = append(args, filter.Since.UTC().UnixNano())
	}
	if filter.Until != nil {
		conds = append(conds, `e.timestamp <= ?`)
		args = append(args, filter.Until.UTC().UnixNano())
	}
	if filter.EntityID != "" || filter.Role != "" {
		sub := `SELECT 1 FROM event_actors a WHERE a.event_id = e.id`
		if filter.EntityID != "" {
			sub += ` AND a.entity_id = ?`
			args = append(args, filter.EntityID)
		}
		if filter.Role != "" {
			sub += ` AND a.role = ?`
			args = append(args, string(filter.Role))
		}
		conds = append(conds, `EXISTS (`+sub+`)`)
	}

	query := `SELECT e.id, e.timestamp, e.kind, e.sub_kind, e.message, e.payload FROM events e`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY e.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var result []entities.Event
	for rows.Next() {
		var (
			event entities.Event
			nanos int64
			kind  string
		)
		if err := rows.Scan(&event.ID, &nanos, &kind, &event.SubKind, &event.Message, &event.Payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		event.Timestamp = time.Unix(0, nanos).UTC()
		event.Kind = entities.EventKind(kind)
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	for i := range result {
		actors, err := r.eventActors(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Actors = actors
	}
	return result, nil
}

func (r *Repository) eventActors(ctx context.Context, eventID int64) ([]entities.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_id, role FROM event_actors WHERE event_id = ? ORDER BY position`, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying event actors: %w", err)
	}
	defer rows.Close()

	var actors []entities.Actor
	for rows.Next() {
		var (
			actor entities.Actor
			role  string
		)
		if err := rows.Scan(&actor.EntityID, &role); err != nil {
			return nil, fmt.Errorf("scanning event actor: %w", err)
		}
		actor.Role = entities.Role(role)
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event actors: %w", err)
	}
	return actors, nil
}

// SetMeta stores a landscape-level key/value pair.
func (r *Repository) SetMeta(ctx context.Context, key, value string) error {
	query := `INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("saving meta %s: %w", key, err)
	}
	return nil
}

// GetMeta returns a stored value, or "" when the key is absent.
func (r *Repository) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// escapeLike escapes LIKE wildcards in user input. SQLite treats % and _ as
// wildcards even inside a bound parameter.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
