package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	out "focusforge/internal/modules/progress/adapter/out"
	"focusforge/internal/modules/progress/domain"
)

func newStatsStore(t *testing.T) *out.SQLiteStatsStore {
	t.Helper()
	store, err := out.NewSQLiteStatsStore(filepath.Join(t.TempDir(), "focusforge.db"))
	if err != nil {
		t.Fatalf("new stats store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadStatsDefaultsWhenAbsent(t *testing.T) {
	t.Parallel()
	store := newStatsStore(t)

	stats, err := store.LoadStats(context.Background())
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.MonstersDefeated == nil {
		t.Fatalf("fresh stats must carry an allocated defeat map")
	}
	if stats.CurrentXP != 0 || stats.TotalPomodoros != 0 || stats.CurrentStreak != 0 {
		t.Fatalf("fresh stats not zeroed: %+v", stats)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	t.Parallel()
	store := newStatsStore(t)
	ctx := context.Background()

	stats := domain.NewUserStats()
	stats.CurrentXP = 480
	stats.TotalPomodoros = 12
	stats.CurrentStreak = 3
	stats.LastActiveDate = "2026-08-30"
	stats.MonstersDefeated["scrollfiend"] = 7

	if err := store.SaveStats(ctx, stats); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	loaded, err := store.LoadStats(ctx)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if loaded.CurrentXP != 480 || loaded.TotalPomodoros != 12 || loaded.CurrentStreak != 3 {
		t.Fatalf("got %+v", loaded)
	}
	if loaded.MonstersDefeated["scrollfiend"] != 7 || loaded.LastActiveDate != "2026-08-30" {
		t.Fatalf("got %+v", loaded)
	}
}

func TestDayCounters(t *testing.T) {
	t.Parallel()
	store := newStatsStore(t)
	ctx := context.Background()

	count, err := store.DayCount(ctx, "2026-08-30")
	if err != nil || count != 0 {
		t.Fatalf("fresh day count = %d, %v", count, err)
	}
	if err := store.SetDayCount(ctx, "2026-08-30", 2); err != nil {
		t.Fatalf("set day count: %v", err)
	}
	if err := store.SetDayCount(ctx, "2026-08-31", 1); err != nil {
		t.Fatalf("set day count: %v", err)
	}

	count, err = store.DayCount(ctx, "2026-08-30")
	if err != nil || count != 2 {
		t.Fatalf("day count = %d, %v", count, err)
	}
	// Days are keyed independently.
	count, err = store.DayCount(ctx, "2026-08-31")
	if err != nil || count != 1 {
		t.Fatalf("day count = %d, %v", count, err)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()
	store := newStatsStore(t)
	ctx := context.Background()

	history, err := store.LoadHistory(ctx)
	if err != nil || history != nil {
		t.Fatalf("fresh history = %+v, %v", history, err)
	}

	saved := []domain.HistoryEntry{
		{Success: true, Date: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)},
		{Success: false, Date: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)},
	}
	if err := store.SaveHistory(ctx, saved); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history, err = store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 2 || !history[0].Success || history[1].Success {
		t.Fatalf("got %+v", history)
	}
	if !history[0].Date.Equal(saved[0].Date) {
		t.Fatalf("date lost: %+v", history[0])
	}
}
