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

	"focusforge/internal/modules/progress/domain"
	progressout "focusforge/internal/modules/progress/port/out"
)

const (
	keyUserStats = "userStats"
	keyHistory   = "sessionHistory"
	dayKeyPrefix = "pomodoros_"
)

// SQLiteStatsStore keeps user stats, day counters and session history as JSON
// documents in the shared key-value records table. Records are always written
// whole, so a retried write converges instead of half-applying.
type SQLiteStatsStore struct {
	db *sql.DB
}

func NewSQLiteStatsStore(dbPath string) (*SQLiteStatsStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteStatsStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStatsStore) ensureSchema(ctx context.Context) error {
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

func (s *SQLiteStatsStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStatsStore) LoadStats(ctx context.Context) (domain.UserStats, error) {
	stats := domain.NewUserStats()
	found, err := s.get(ctx, keyUserStats, &stats)
	if err != nil {
		return domain.UserStats{}, err
	}
	if !found {
		return domain.NewUserStats(), nil
	}
	stats.Normalize()
	return stats, nil
}

func (s *SQLiteStatsStore) SaveStats(ctx context.Context, stats domain.UserStats) error {
	return s.set(ctx, keyUserStats, stats)
}

func (s *SQLiteStatsStore) DayCount(ctx context.Context, day string) (int, error) {
	count := 0
	if _, err := s.get(ctx, dayKeyPrefix+day, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLiteStatsStore) SetDayCount(ctx context.Context, day string, count int) error {
	return s.set(ctx, dayKeyPrefix+day, count)
}

func (s *SQLiteStatsStore) LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	var history []domain.HistoryEntry
	if _, err := s.get(ctx, keyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SQLiteStatsStore) SaveHistory(ctx context.Context, history []domain.HistoryEntry) error {
	return s.set(ctx, keyHistory, history)
}

func (s *SQLiteStatsStore) get(ctx context.Context, key string, out any) (bool, error) {
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

func (s *SQLiteStatsStore) set(ctx context.Context, key string, value any) error {
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

var _ progressout.StatsStore = (*SQLiteStatsStore)(nil)
