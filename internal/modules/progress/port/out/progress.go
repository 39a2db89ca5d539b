package out

import (
	"context"

	bestiary "focusforge/internal/modules/bestiary/domain"
	"focusforge/internal/modules/progress/domain"
)

// StatsStore persists cumulative stats, day-keyed pomodoro counters and the
// recent-session history. Missing records load as zeroed defaults.
type StatsStore interface {
	LoadStats(ctx context.Context) (domain.UserStats, error)
	SaveStats(ctx context.Context, stats domain.UserStats) error
	DayCount(ctx context.Context, day string) (int, error)
	SetDayCount(ctx context.Context, day string, count int) error
	LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	SaveHistory(ctx context.Context, history []domain.HistoryEntry) error
}

// RuleSource supplies the static reward rules.
type RuleSource interface {
	Monster(ctx context.Context, id string) (bestiary.Monster, error)
	XPConfig(ctx context.Context) (bestiary.XPConfig, error)
}
