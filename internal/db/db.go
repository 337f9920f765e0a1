package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/mrwolf/kocicka/internal/pet"
)

// Registered driver names. mattn/go-sqlite3 needs cgo; modernc.org/sqlite does not.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// singletonID is the fixed primary key of both singleton rows.
const singletonID = 0

const schema = `
-- Pet condition, one row with id 0
CREATE TABLE IF NOT EXISTS cat_state (
    id INTEGER PRIMARY KEY,
    hunger INTEGER NOT NULL,
    energy INTEGER NOT NULL,
    hygiene INTEGER NOT NULL,
    mood INTEGER NOT NULL,
    health INTEGER NOT NULL,
    last_updated INTEGER NOT NULL -- unix milliseconds
);

-- Parental settings, one row with id 0
CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY,
    parent_pin TEXT NOT NULL,
    ai_enabled INTEGER NOT NULL,
    stories_enabled INTEGER NOT NULL,
    play_time_limit_minutes INTEGER NOT NULL
);
`

// StorageError reports a failed read or write of a persisted record.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type DB struct {
	conn       *sql.DB
	writeTries uint
}

// Open opens (creating if needed) the database at path with the given driver.
func Open(driver, path string) (*DB, error) {
	dsn, err := dataSource(driver, path)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn, writeTries: 3}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func dataSource(driver, path string) (string, error) {
	switch driver {
	case DriverCGO:
		return path + "?_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPureGo:
		return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadPetState returns the stored pet state. ok is false when nothing was written yet.
func (db *DB) LoadPetState(ctx context.Context) (state pet.State, ok bool, err error) {
	var lastUpdated int64
	err = db.conn.QueryRowContext(ctx, `
		SELECT hunger, energy, hygiene, mood, health, last_updated
		FROM cat_state WHERE id = ?
	`, singletonID).Scan(&state.Hunger, &state.Energy, &state.Hygiene, &state.Mood, &state.Health, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return pet.State{}, false, nil
	}
	if err != nil {
		return pet.State{}, false, &StorageError{Op: "load pet state", Err: err}
	}
	state.LastUpdated = time.UnixMilli(lastUpdated).UTC()
	return state.Clamped(), true, nil
}

// SavePetState overwrites the singleton pet row.
func (db *DB) SavePetState(ctx context.Context, state pet.State) error {
	state = state.Clamped()
	return db.write(ctx, "save pet state", `
		INSERT INTO cat_state (id, hunger, energy, hygiene, mood, health, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hunger = excluded.hunger,
			energy = excluded.energy,
			hygiene = excluded.hygiene,
			mood = excluded.mood,
			health = excluded.health,
			last_updated = excluded.last_updated
	`, singletonID, state.Hunger, state.Energy, state.Hygiene, state.Mood, state.Health, state.LastUpdated.UnixMilli())
}

// LoadSettings returns the stored settings. ok is false when nothing was written yet.
func (db *DB) LoadSettings(ctx context.Context) (s pet.Settings, ok bool, err error) {
	var ai, stories int
	err = db.conn.QueryRowContext(ctx, `
		SELECT parent_pin, ai_enabled, stories_enabled, play_time_limit_minutes
		FROM app_settings WHERE id = ?
	`, singletonID).Scan(&s.ParentalPIN, &ai, &stories, &s.PlayTimeLimitMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return pet.Settings{}, false, nil
	}
	if err != nil {
		return pet.Settings{}, false, &StorageError{Op: "load settings", Err: err}
	}
	s.AIEnabled = ai == 1
	s.StoriesEnabled = stories == 1
	return s, true, nil
}

// SaveSettings overwrites the singleton settings row.
func (db *DB) SaveSettings(ctx context.Context, s pet.Settings) error {
	return db.write(ctx, "save settings", `
		INSERT INTO app_settings (id, parent_pin, ai_enabled, stories_enabled, play_time_limit_minutes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_pin = excluded.parent_pin,
			ai_enabled = excluded.ai_enabled,
			stories_enabled = excluded.stories_enabled,
			play_time_limit_minutes = excluded.play_time_limit_minutes
	`, singletonID, s.ParentalPIN, boolInt(s.AIEnabled), boolInt(s.StoriesEnabled), s.PlayTimeLimitMinutes)
}

// write executes a statement, retrying with exponential backoff.
// Writes are the only retried operation in the app.
func (db *DB) write(ctx context.Context, op, query string, args ...any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (sql.Result, error) {
		res, err := db.conn.ExecContext(ctx, query, args...)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(db.writeTries))
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
