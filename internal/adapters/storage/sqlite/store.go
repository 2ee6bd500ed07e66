package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// LayoutKey is the durable key for the arrangement record. The schema
// version is part of the key name so a bump can coexist with, or fully
// replace, prior saves.
var LayoutKey = fmt.Sprintf("layout.v%d", domain.SchemaVersion)

// layoutRecord is the JSON payload stored under LayoutKey.
type layoutRecord struct {
	Cards   []domain.Card `json:"cards"`
	Version int           `json:"version"`
}

// Store persists the layout record and the mutation journal.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenInMemory opens an in-memory store for tests. The shared cache ties
// every connection with the same name to one database, so concurrent
// tests must pass distinct names.
func OpenInMemory(name string) (*Store, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("sqlite memory name is required")
	}
	db, err := sql.Open(driverName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate handles migrate.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layout_records (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			card_id TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_occurred_at
			ON change_events(occurred_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadLayout reads the arrangement record under LayoutKey. Failures are
// classified with the app sentinel errors: absent records, unparsable
// payloads, and schema-version mismatches all tell the engine to fall
// back to the default layout rather than half-apply a save.
func (s *Store) LoadLayout(ctx context.Context) (domain.Layout, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM layout_records WHERE key = ?`, LayoutKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Layout{}, app.ErrNoSavedLayout
	}
	if err != nil {
		return domain.Layout{}, fmt.Errorf("load layout: %w", err)
	}

	var record layoutRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return domain.Layout{}, fmt.Errorf("%w: %v", app.ErrCorruptLayout, err)
	}
	if record.Version != domain.SchemaVersion {
		return domain.Layout{}, fmt.Errorf("%w: saved version %d, current %d",
			app.ErrStaleLayout, record.Version, domain.SchemaVersion)
	}
	return domain.Layout{Cards: record.Cards, Version: record.Version}, nil
}

// SaveLayout writes the layout verbatim under LayoutKey. This is the only
// operation that writes the arrangement record.
func (s *Store) SaveLayout(ctx context.Context, layout domain.Layout) error {
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	payload, err := json.Marshal(layoutRecord{Cards: layout.Cards, Version: layout.Version})
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO layout_records (key, payload, saved_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		LayoutKey, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

// DeleteLayout removes the durable arrangement record.
func (s *Store) DeleteLayout(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM layout_records WHERE key = ?`, LayoutKey,
	); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

// AppendChangeEvents writes journal entries in one transaction.
func (s *Store) AppendChangeEvents(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append change events: %w", err)
	}
	for _, ev := range events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO change_events (id, operation, card_id, summary, occurred_at)
				VALUES (?, ?, ?, ?, ?)`,
			ev.ID, string(ev.Operation), ev.CardID, ev.Summary,
			ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append change event %q: %w", ev.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append change events: %w", err)
	}
	return nil
}

// ListChangeEvents returns journal entries, newest first.
func (s *Store) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, card_id, summary, occurred_at
			FROM change_events ORDER BY occurred_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list change events: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeEvent
	for rows.Next() {
		var ev domain.ChangeEvent
		var op, occurredAt string
		if err := rows.Scan(&ev.ID, &op, &ev.CardID, &ev.Summary, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		ev.Operation = domain.ChangeOperation(op)
		ts, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse change event time: %w", err)
		}
		ev.OccurredAt = ts
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list change events: %w", err)
	}
	return out, nil
}
