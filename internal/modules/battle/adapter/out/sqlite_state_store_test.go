package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	out "focusforge/internal/modules/battle/adapter/out"
	"focusforge/internal/modules/battle/domain"
)

func newStateStore(t *testing.T) *out.SQLiteStateStore {
	t.Helper()
	store, err := out.NewSQLiteStateStore(filepath.Join(t.TempDir(), "focusforge.db"))
	if err != nil {
		t.Fatalf("new state store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()
	store := newStateStore(t)
	ctx := context.Background()

	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	session := domain.NewSession("s1", "scrollfiend", "Scrollfiend", "🌀", 1000, 1500, start)
	session.ApplyDamage(40, 40)
	session.Heal(1)
	session.AppendHeal("Scrollfiend feeds on reddit.com!")
	session.LastHealUnix = start.Add(40 * time.Second).Unix()

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatalf("session missing after save")
	}
	if loaded.ID != "s1" || loaded.CurrentHP != 961 || loaded.LastAppliedSecond != 40 {
		t.Fatalf("got %+v", loaded)
	}
	if !loaded.HadDistractions || loaded.LastHealUnix != session.LastHealUnix {
		t.Fatalf("distraction state lost: %+v", loaded)
	}
	if !loaded.StartTime.Equal(start) {
		t.Fatalf("start time = %v", loaded.StartTime)
	}
	if len(loaded.BattleLog) != 2 {
		t.Fatalf("battle log = %+v", loaded.BattleLog)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if loaded != nil {
		t.Fatalf("session survived clear: %+v", loaded)
	}
}

func TestLoadReturnsNilWhenAbsent(t *testing.T) {
	t.Parallel()
	store := newStateStore(t)
	ctx := context.Background()

	session, err := store.Load(ctx)
	if err != nil || session != nil {
		t.Fatalf("got %+v, %v", session, err)
	}
	outcome, err := store.LoadOutcome(ctx)
	if err != nil || outcome != nil {
		t.Fatalf("got %+v, %v", outcome, err)
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	t.Parallel()
	store := newStateStore(t)
	ctx := context.Background()

	saved := &domain.Outcome{
		SessionID:       "s1",
		MonsterID:       "scrollfiend",
		MonsterName:     "Scrollfiend",
		Result:          domain.ResultVictory,
		StartTime:       time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		EndTime:         time.Date(2026, 8, 30, 9, 25, 0, 0, time.UTC),
		DurationSeconds: 1500,
		ElapsedSeconds:  1500,
		MaxHP:           1000,
		XPEarned:        125,
		XPMessages:      []string{"Flawless focus! +25 XP."},
		PomodoroCredit:  true,
		CurrentStreak:   3,
	}
	if err := store.SaveOutcome(ctx, saved); err != nil {
		t.Fatalf("save outcome: %v", err)
	}
	loaded, err := store.LoadOutcome(ctx)
	if err != nil {
		t.Fatalf("load outcome: %v", err)
	}
	if loaded == nil || loaded.Result != domain.ResultVictory || loaded.XPEarned != 125 {
		t.Fatalf("got %+v", loaded)
	}
	if !loaded.PomodoroCredit || loaded.CurrentStreak != 3 {
		t.Fatalf("got %+v", loaded)
	}

	if err := store.ClearOutcome(ctx); err != nil {
		t.Fatalf("clear outcome: %v", err)
	}
	loaded, err = store.LoadOutcome(ctx)
	if err != nil || loaded != nil {
		t.Fatalf("outcome survived clear: %+v, %v", loaded, err)
	}
}
