// Package snapshot persists dispatch sessions in SQLite so handles survive
// process restarts.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
	"github.com/wippyai/objref/resource"
	"github.com/wippyai/objref/snapshot/migrations"
)

// ErrNotFound is returned by Load for a session that was never saved.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted form of one session.
type Snapshot struct {
	SavedAt time.Time
	Name    string
	Layout  resource.Layout
	Entries []dispatch.Entry
}

// Store persists snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite snapshot store and applies embedded migrations.
// The path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the stored snapshot for name.
func (s *Store) Save(ctx context.Context, name string, layout resource.Layout, entries []dispatch.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("session name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE session = ?`, name); err != nil {
		return fmt.Errorf("clear objects: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (name, layout, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET layout = excluded.layout, saved_at = excluded.saved_at`,
		name, string(layout), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO objects (session, position, handle, preset_bits) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		bits := int64(math.Float64bits(e.Preset))
		if _, err := stmt.ExecContext(ctx, name, i, int64(e.Handle), bits); err != nil {
			if isConstraintViolation(err) {
				return objerrors.Wrap(objerrors.PhaseRestore, objerrors.KindInvalidData, err,
					fmt.Sprintf("duplicate handle %d in session %q", e.Handle, name))
			}
			return fmt.Errorf("insert handle %d: %w", e.Handle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the snapshot for name with entries in their saved order.
func (s *Store) Load(ctx context.Context, name string) (Snapshot, error) {
	snap := Snapshot{Name: name}

	var layout string
	var savedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT layout, saved_at FROM sessions WHERE name = ?`, name,
	).Scan(&layout, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("session %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return snap, fmt.Errorf("query session: %w", err)
	}
	if snap.Layout, err = resource.ParseLayout(layout); err != nil {
		return snap, objerrors.Wrap(objerrors.PhaseRestore, objerrors.KindInvalidData, err, "stored layout")
	}
	snap.SavedAt = time.UnixMilli(savedAt).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT handle, preset_bits FROM objects WHERE session = ? ORDER BY position`, name)
	if err != nil {
		return snap, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var handle, bits int64
		if err := rows.Scan(&handle, &bits); err != nil {
			return snap, fmt.Errorf("scan object: %w", err)
		}
		snap.Entries = append(snap.Entries, dispatch.Entry{
			Handle: resource.Handle(handle),
			Preset: math.Float64frombits(uint64(bits)),
		})
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate objects: %w", err)
	}
	return snap, nil
}

// Delete removes a stored session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE session = ?`, name); err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// Sessions lists stored session names in order.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sessions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SaveSession snapshots a live session under name.
func (s *Store) SaveSession(ctx context.Context, name string, sess *dispatch.Session) error {
	return s.Save(ctx, name, sess.Layout(), sess.Export())
}

// Restore loads name into an empty session. A missing snapshot leaves the
// session empty and returns nil.
func (s *Store) Restore(ctx context.Context, name string, sess *dispatch.Session) error {
	snap, err := s.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return sess.Import(snap.Entries)
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}
