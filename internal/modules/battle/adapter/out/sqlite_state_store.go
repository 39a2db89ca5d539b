package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"focusforge/internal/modules/battle/domain"
	battleout "focusforge/internal/modules/battle/port/out"
)

const (
	keyCurrentSession = "currentSession"
	keySessionOutcome = "sessionOutcome"
)

// SQLiteStateStore persists the live session and the latest outcome as JSON
// documents in the key-value records table. The session is written whole on
// every tick, so whatever survives a crash is a consistent frame.
type SQLiteStateStore struct {
	db *sql.DB
}

func NewSQLiteStateStore(dbPath string) (*SQLiteStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteStateStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStateStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStateStore) Load(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{}
	found, err := s.get(ctx, keyCurrentSession, session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return session, nil
}

func (s *SQLiteStateStore) Save(ctx context.Context, session *domain.Session) error {
	return s.set(ctx, keyCurrentSession, session)
}

func (s *SQLiteStateStore) Clear(ctx context.Context) error {
	return s.delete(ctx, keyCurrentSession)
}

func (s *SQLiteStateStore) LoadOutcome(ctx context.Context) (*domain.Outcome, error) {
	outcome := &domain.Outcome{}
	found, err := s.get(ctx, keySessionOutcome, outcome)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return outcome, nil
}

func (s *SQLiteStateStore) SaveOutcome(ctx context.Context, outcome *domain.Outcome) error {
	return s.set(ctx, keySessionOutcome, outcome)
}

func (s *SQLiteStateStore) ClearOutcome(ctx context.Context) error {
	return s.delete(ctx, keySessionOutcome)
}

func (s *SQLiteStateStore) get(ctx context.Context, key string, out any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read record %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("decode record %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStateStore) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	const stmt = `
INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, key, string(payload), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStateStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

var (
	_ battleout.SessionStore = (*SQLiteStateStore)(nil)
	_ battleout.OutcomeStore = (*SQLiteStateStore)(nil)
)
