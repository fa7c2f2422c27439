package checkpoint

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/reagent-ai/reagent/core"
)

// SQLiteStore is a durable SessionStore backed by a local SQLite database.
// Sessions keep their state as a JSON document and their events as an
// append-only log, so a conversation thread can be resumed by session ID
// across process restarts.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL DEFAULT '{}',
	metadata TEXT NOT NULL DEFAULT '{}',
	created TIMESTAMP NOT NULL,
	updated TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	payload TEXT NOT NULL,
	created TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
`

// NewSQLiteStore opens (or creates) the database at path and bootstraps the
// schema. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// validateSessionID rejects IDs that could be abused as path fragments or
// break queries.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if strings.ContainsAny(id, "/\\\x00") || strings.Contains(id, "..") {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// Create inserts a fresh session, resetting any existing one with the same ID.
func (s *SQLiteStore) Create(sessionID string) (*core.Session, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if _, err := s.db.Exec(`DELETE FROM events WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear events: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO sessions (id, state, metadata, created, updated) VALUES (?, '{}', '{}', ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = '{}', metadata = '{}', updated = excluded.updated`,
		sessionID, now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return core.NewSession(sessionID), nil
}

// Get loads a session with its full event log, lazily creating it if absent.
func (s *SQLiteStore) Get(sessionID string) (*core.Session, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var stateJSON, metadataJSON string
	var created, updated time.Time
	err := s.db.QueryRow(
		`SELECT state, metadata, created, updated FROM sessions WHERE id = ?`, sessionID,
	).Scan(&stateJSON, &metadataJSON, &created, &updated)
	if err == sql.ErrNoRows {
		return s.createLocked(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := core.NewSession(sessionID)
	sess.Created = created
	sess.Updated = updated
	if err := json.Unmarshal([]byte(stateJSON), &sess.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode session metadata: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT payload FROM events WHERE session_id = ? ORDER BY rowid`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var ev core.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		sess.Events = append(sess.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return sess, nil
}

// AppendEvent persists an event to the session's log.
func (s *SQLiteStore) AppendEvent(sessionID string, ev core.Event) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSessionLocked(sessionID); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	now := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT INTO events (id, session_id, payload, created) VALUES (?, ?, ?, ?)`,
		ev.ID, sessionID, string(payload), now,
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	if _, err := s.db.Exec(
		`UPDATE sessions SET updated = ? WHERE id = ?`, now, sessionID,
	); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// ApplyDelta merges a key/value delta into the persisted session state.
func (s *SQLiteStore) ApplyDelta(sessionID string, delta map[string]any) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if len(delta) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSessionLocked(sessionID); err != nil {
		return err
	}

	var stateJSON string
	if err := s.db.QueryRow(
		`SELECT state FROM sessions WHERE id = ?`, sessionID,
	).Scan(&stateJSON); err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	}

	state := map[string]any{}
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return fmt.Errorf("failed to decode session state: %w", err)
	}
	for k, v := range delta {
		state[k] = v
	}
	merged, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	if _, err := s.db.Exec(
		`UPDATE sessions SET state = ?, updated = ? WHERE id = ?`,
		string(merged), time.Now().UTC(), sessionID,
	); err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	return nil
}

// createLocked inserts a fresh session row; caller must hold the lock.
func (s *SQLiteStore) createLocked(sessionID string) (*core.Session, error) {
	now := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (id, state, metadata, created, updated) VALUES (?, '{}', '{}', ?, ?)`,
		sessionID, now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return core.NewSession(sessionID), nil
}

func (s *SQLiteStore) ensureSessionLocked(sessionID string) error {
	now := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (id, state, metadata, created, updated) VALUES (?, '{}', '{}', ?, ?)`,
		sessionID, now, now,
	); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}
