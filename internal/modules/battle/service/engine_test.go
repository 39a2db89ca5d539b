package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"focusforge/internal/modules/battle/domain"
	battleout "focusforge/internal/modules/battle/port/out"
	"focusforge/internal/modules/battle/service"
	bestiarydomain "focusforge/internal/modules/bestiary/domain"
	progressdomain "focusforge/internal/modules/progress/domain"
	"focusforge/internal/platform/clock"
	apperrors "focusforge/internal/platform/errors"
)

// ─── fakes ───────────────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeClock) NewTicker(time.Duration) clock.Ticker { return fakeTicker{} }

// fakeTicker never fires; tests drive ticks explicitly.
type fakeTicker struct{}

func (fakeTicker) C() <-chan time.Time { return make(chan time.Time) }
func (fakeTicker) Stop()               {}

type fakeID struct{}

func (fakeID) New() string { return "battle-1" }

type memoryStateStore struct {
	mu      sync.Mutex
	session *domain.Session
	outcome *domain.Outcome
}

func (m *memoryStateStore) Load(context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	copied.BattleLog = append([]domain.LogEntry(nil), m.session.BattleLog...)
	return &copied, nil
}

func (m *memoryStateStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	copied.BattleLog = append([]domain.LogEntry(nil), s.BattleLog...)
	m.session = &copied
	return nil
}

func (m *memoryStateStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *memoryStateStore) LoadOutcome(context.Context) (*domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome, nil
}

func (m *memoryStateStore) SaveOutcome(_ context.Context, o *domain.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcome = o
	return nil
}

func (m *memoryStateStore) ClearOutcome(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcome = nil
	return nil
}

type fakeObserver struct {
	mu  sync.Mutex
	obs battleout.Observation
}

func (f *fakeObserver) Set(obs battleout.Observation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = obs
}

func (f *fakeObserver) Sample(context.Context) (battleout.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.obs, nil
}

func (f *fakeObserver) Close() error { return nil }

type fakeCatalog struct {
	monster bestiarydomain.Monster
	cfg     bestiarydomain.XPConfig
}

func (f fakeCatalog) Monster(_ context.Context, id string) (bestiarydomain.Monster, error) {
	if id != f.monster.ID {
		return bestiarydomain.Monster{}, apperrors.ErrInvalidMonster
	}
	return f.monster, nil
}

func (f fakeCatalog) XPConfig(context.Context) (bestiarydomain.XPConfig, error) {
	return f.cfg, nil
}

type rewardCall struct {
	kind         string
	fullDuration bool
	distractions bool
	amount       int
}

type fakeRewards struct {
	mu    sync.Mutex
	calls []rewardCall
}

func (f *fakeRewards) record(c rewardCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeRewards) Calls() []rewardCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rewardCall(nil), f.calls...)
}

func (f *fakeRewards) ApplyVictory(_ context.Context, _ string, hadDistractions bool) (progressdomain.Award, error) {
	f.record(rewardCall{kind: "victory", distractions: hadDistractions})
	return progressdomain.Award{XPEarned: 125, PomodoroCompleted: true, CurrentStreak: 1}, nil
}

func (f *fakeRewards) ApplyTimeoutDefeat(_ context.Context, fullDuration bool) (progressdomain.Award, error) {
	f.record(rewardCall{kind: "defeat", fullDuration: fullDuration})
	return progressdomain.Award{PomodoroCompleted: fullDuration}, nil
}

func (f *fakeRewards) ApplyAbandon(context.Context) (progressdomain.Award, error) {
	f.record(rewardCall{kind: "abandon"})
	return progressdomain.Award{}, nil
}

func (f *fakeRewards) AwardMicroXP(_ context.Context, amount int) (int, error) {
	f.record(rewardCall{kind: "micro", amount: amount})
	return amount, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
	outcomes  []domain.Outcome
}

func (n *recordingNotifier) BattleStateUpdated(s domain.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, s)
}

func (n *recordingNotifier) SessionResolved(o domain.Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, o)
}

func (n *recordingNotifier) Outcomes() []domain.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Outcome(nil), n.outcomes...)
}

// ─── harness ─────────────────────────────────────────────────────────────────

type harness struct {
	clk      *fakeClock
	store    *memoryStateStore
	observer *fakeObserver
	rewards  *fakeRewards
	notifier *recordingNotifier
	engine   *service.Engine
}

func newHarness(t *testing.T, monster bestiarydomain.Monster) *harness {
	t.Helper()
	h := &harness{
		clk:      newFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)),
		store:    &memoryStateStore{},
		observer: &fakeObserver{},
		rewards:  &fakeRewards{},
		notifier: &recordingNotifier{},
	}
	h.engine = service.NewEngine(service.EngineParams{
		Clock:    h.clk,
		IDs:      fakeID{},
		Catalog:  fakeCatalog{monster: monster, cfg: testXPConfig()},
		Sessions: h.store,
		Outcomes: h.store,
		Observer: h.observer,
		Notifier: h.notifier,
		Rewards:  h.rewards,

		ResolveDelay: time.Millisecond,
	})
	t.Cleanup(func() { _ = h.engine.Close() })
	return h
}

func testXPConfig() bestiarydomain.XPConfig {
	return bestiarydomain.XPConfig{
		Base: bestiarydomain.XPBase{XPForStarting: 10, XPForHalfway: 50, XPPerHP: 0.1, MinXP: 50},
		Modifiers: bestiarydomain.XPModifiers{
			NoDistractions: 0.25, SecondSession: 0.1, MinFocusCrit: 1.0, MaxFocusCrit: 1.0,
		},
		LevelCurve:       bestiarydomain.LevelCurve{BaseXP: 100, Exponent: 1.5},
		StreakMultiplier: bestiarydomain.StreakMultiplier{PerDay: 0.05, MaxMultiplier: 2},
		Titles:           map[int]string{1: "Novice"},
	}
}

func siteMonster(hp int) bestiarydomain.Monster {
	return bestiarydomain.Monster{
		ID: "scrollfiend", Name: "Scrollfiend", Icon: "🌀", HP: hp,
		TriggerSites: []string{"reddit", "twitter"},
	}
}

func tabMonster(hp int) bestiarydomain.Monster {
	return bestiarydomain.Monster{
		ID: "tabberwock", Name: "Tabberwock", Icon: "🐉", HP: hp,
		TriggerEvent: bestiarydomain.TriggerTabSwitch,
	}
}

func microTotal(calls []rewardCall) int {
	total := 0
	for _, c := range calls {
		if c.kind == "micro" {
			total += c.amount
		}
	}
	return total
}

// ─── tests ───────────────────────────────────────────────────────────────────

func TestVictoryWhenMonsterHPReachesZero(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(10))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 3600); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(10 * time.Second)
	h.engine.Tick(ctx)

	outcomes := h.notifier.Outcomes()
	if len(outcomes) != 1 || outcomes[0].Result != domain.ResultVictory {
		t.Fatalf("expected one victory outcome, got %+v", outcomes)
	}
	if outcomes[0].FinalHP != 0 {
		t.Fatalf("expected final hp 0, got %d", outcomes[0].FinalHP)
	}
	if outcomes[0].XPEarned != 125 {
		t.Fatalf("expected award xp forwarded, got %d", outcomes[0].XPEarned)
	}
	found := false
	for _, c := range h.rewards.Calls() {
		if c.kind == "victory" {
			found = true
			if c.distractions {
				t.Fatalf("clean run must not report distractions")
			}
		}
	}
	if !found {
		t.Fatalf("victory reward not applied")
	}
	if _, err := h.engine.State(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after resolve, got %v", err)
	}
	stored, err := h.engine.LastOutcome(ctx)
	if err != nil {
		t.Fatalf("load outcome: %v", err)
	}
	if stored.Result != domain.ResultVictory {
		t.Fatalf("persisted outcome mismatch: %+v", stored)
	}
}

func TestTimeoutDefeatCreditsPomodoroWhenFullDurationElapsed(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(10000))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 60); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(60 * time.Second)
	h.engine.Tick(ctx)

	outcomes := h.notifier.Outcomes()
	if len(outcomes) != 1 || outcomes[0].Result != domain.ResultDefeat {
		t.Fatalf("expected defeat, got %+v", outcomes)
	}
	if !outcomes[0].PomodoroCredit {
		t.Fatalf("full-duration defeat must credit the pomodoro")
	}
	if outcomes[0].XPEarned != 0 {
		t.Fatalf("defeat must not pay victory xp, got %d", outcomes[0].XPEarned)
	}
	for _, c := range h.rewards.Calls() {
		if c.kind == "defeat" && !c.fullDuration {
			t.Fatalf("expected fullDuration defeat call")
		}
	}
}

func TestEndSessionEarlyAbandonsWithoutReward(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(1000))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(5 * time.Second)
	outcome, err := h.engine.EndSessionEarly(ctx)
	if err != nil {
		t.Fatalf("end early: %v", err)
	}
	if outcome.Result != domain.ResultAbandoned {
		t.Fatalf("expected abandoned, got %s", outcome.Result)
	}
	if outcome.XPEarned != 0 || outcome.PomodoroCredit {
		t.Fatalf("abandon must pay nothing: %+v", outcome)
	}
	calls := h.rewards.Calls()
	abandoned := false
	for _, c := range calls {
		if c.kind == "victory" || c.kind == "defeat" {
			t.Fatalf("unexpected reward call %q", c.kind)
		}
		if c.kind == "abandon" {
			abandoned = true
		}
	}
	if !abandoned {
		t.Fatalf("abandon not recorded")
	}
	if _, err := h.engine.EndSessionEarly(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("second end must report no session, got %v", err)
	}
}

func TestMissedTicksApplyCatchUpDamage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(30 * time.Second)
	h.engine.Tick(ctx)

	state, err := h.engine.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.CurrentHP != 70 {
		t.Fatalf("expected 70 hp after 30s catch-up, got %d", state.CurrentHP)
	}
}

func TestTriggerSiteStopsDamageAndHealsRateLimited(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.clk.Advance(5 * time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 95 {
		t.Fatalf("expected 95 hp focused, got %d", state.CurrentHP)
	}

	h.observer.Set(battleout.Observation{Hostname: "www.Reddit.com"})
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	state, _ := h.engine.State(ctx)
	if state.CurrentHP != 96 {
		t.Fatalf("expected heal to 96 on trigger site, got %d", state.CurrentHP)
	}
	if !state.HadDistractions {
		t.Fatalf("trigger site visit must mark distractions")
	}

	// Within the heal window: no damage, no further healing.
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 96 {
		t.Fatalf("heal must be rate limited, got %d", state.CurrentHP)
	}

	// Window elapsed: heals again.
	h.clk.Advance(2 * time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 97 {
		t.Fatalf("expected second heal to 97, got %d", state.CurrentHP)
	}
}

func TestTabSwitchHealsOnChangeOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t, tabMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "tabberwock", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.observer.Set(battleout.Observation{Hostname: "docs.example.com", TabID: "tab-a"})
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 99 {
		t.Fatalf("first observation must not heal, got %d", state.CurrentHP)
	}

	// Same tab: plain damage.
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 97 {
		t.Fatalf("same tab must not heal, got %d", state.CurrentHP)
	}

	// Tab changed: the trigger fires, so damage is zero and the monster
	// heals 2.
	h.observer.Set(battleout.Observation{Hostname: "docs.example.com", TabID: "tab-b"})
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	state, _ := h.engine.State(ctx)
	if state.CurrentHP != 99 {
		t.Fatalf("tab switch tick expected 99, got %d", state.CurrentHP)
	}
	if !state.HadDistractions {
		t.Fatalf("tab switch must mark distractions")
	}

	// Settling back onto one tab resumes damage.
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 98 {
		t.Fatalf("post-switch tick expected 98, got %d", state.CurrentHP)
	}

	// Switches are edge triggered and exempt from the site heal window.
	h.observer.Set(battleout.Observation{Hostname: "docs.example.com", TabID: "tab-c"})
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 100 {
		t.Fatalf("second switch expected 100, got %d", state.CurrentHP)
	}
}

func TestStartSessionForceResetsPriorBattle(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("first start: %v", err)
	}
	h.clk.Advance(20 * time.Second)
	h.engine.Tick(ctx)

	// A duplicate start wins: the old fight is discarded wholesale.
	state, err := h.engine.StartSession(ctx, "scrollfiend", 600)
	if err != nil {
		t.Fatalf("second start must succeed, got %v", err)
	}
	if state.CurrentHP != 100 || state.DurationSeconds != 600 {
		t.Fatalf("new session must start fresh, got %+v", state)
	}
	// A hard reset is not a defeat: no outcome, no reward mutation.
	if _, err := h.engine.LastOutcome(ctx); !errors.Is(err, apperrors.ErrNoOutcome) {
		t.Fatalf("force reset must not record an outcome, got %v", err)
	}
	for _, c := range h.rewards.Calls() {
		if c.kind == "abandon" || c.kind == "defeat" || c.kind == "victory" {
			t.Fatalf("force reset must not settle rewards, got %q", c.kind)
		}
	}
}

func TestStartSessionDurationDefaultsToMonsterHP(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(450))
	ctx := context.Background()

	state, err := h.engine.StartSession(ctx, "scrollfiend", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// One second of focus per hit point.
	if state.DurationSeconds != 450 {
		t.Fatalf("duration = %d, want monster hp 450", state.DurationSeconds)
	}

	if _, err := h.engine.StartSession(ctx, "scrollfiend", -5); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative duration must be rejected, got %v", err)
	}
}

func TestMilestonesAwardOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(10000))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 100); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if got := microTotal(h.rewards.Calls()); got != 10 {
		t.Fatalf("start bonus must pay exactly once, got %d", got)
	}

	h.clk.Advance(48 * time.Second)
	h.engine.Tick(ctx)
	h.clk.Advance(time.Second)
	h.engine.Tick(ctx)
	if got := microTotal(h.rewards.Calls()); got != 60 {
		t.Fatalf("halfway bonus must pay exactly once, got total %d", got)
	}
}

func TestRecoverContinuesMidSessionWithCatchUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(1000))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 3600); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(10 * time.Second)
	h.engine.Tick(ctx)

	// A second engine on the same store stands in for a process restart.
	h.clk.Advance(30 * time.Second)
	restarted := &fakeRewards{}
	engine2 := service.NewEngine(service.EngineParams{
		Clock:        h.clk,
		IDs:          fakeID{},
		Catalog:      fakeCatalog{monster: siteMonster(1000), cfg: testXPConfig()},
		Sessions:     h.store,
		Outcomes:     h.store,
		Observer:     &fakeObserver{},
		Notifier:     &recordingNotifier{},
		Rewards:      restarted,
		ResolveDelay: time.Millisecond,
	})
	defer func() { _ = engine2.Close() }()

	if err := engine2.Recover(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}
	state, err := engine2.State(ctx)
	if err != nil {
		t.Fatalf("state after recover: %v", err)
	}
	if state.CurrentHP != 960 {
		t.Fatalf("expected 960 hp after 40s total, got %d", state.CurrentHP)
	}
	// Milestones passed offline are marked spent, never re-paid.
	if got := microTotal(restarted.Calls()); got != 0 {
		t.Fatalf("recovery must not re-award milestones, got %d", got)
	}
}

func TestRecoverResolvesExpiredSessionFromStoredHP(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	// Persisted mid-fight, then the process was gone until well past the
	// deadline: 60 of 100 seconds applied, monster at 40 HP.
	start := h.clk.Now().Add(-200 * time.Second)
	session := domain.NewSession("battle-0", "scrollfiend", "Scrollfiend", "🌀", 100, 100, start)
	session.ApplyDamage(60, 60)
	if err := h.store.Save(ctx, session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if err := h.engine.Recover(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}
	// No offline catch-up damage: nothing was fighting while the engine was
	// unloaded, so the monster survives at its last persisted HP.
	outcomes := h.notifier.Outcomes()
	if len(outcomes) != 1 || outcomes[0].Result != domain.ResultDefeat {
		t.Fatalf("expected defeat from stored hp, got %+v", outcomes)
	}
	if outcomes[0].FinalHP != 40 {
		t.Fatalf("final hp = %d, want 40", outcomes[0].FinalHP)
	}
	if outcomes[0].ElapsedSeconds != 100 {
		t.Fatalf("outcome must be anchored to the deadline, got %d elapsed", outcomes[0].ElapsedSeconds)
	}
	if !outcomes[0].PomodoroCredit {
		t.Fatalf("full planned duration elapsed, pomodoro must count")
	}
	if _, err := h.engine.State(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expired session must not stay active, got %v", err)
	}
}

func TestRecoverExpiredSessionWithDeadMonsterIsVictory(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(30))
	ctx := context.Background()

	// Crash landed between the killing tick's persist and its resolution.
	start := h.clk.Now().Add(-90 * time.Second)
	session := domain.NewSession("battle-0", "scrollfiend", "Scrollfiend", "🌀", 30, 60, start)
	session.ApplyDamage(30, 30)
	if err := h.store.Save(ctx, session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if err := h.engine.Recover(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}
	outcomes := h.notifier.Outcomes()
	if len(outcomes) != 1 || outcomes[0].Result != domain.ResultVictory {
		t.Fatalf("expected victory for a monster already at 0 HP, got %+v", outcomes)
	}
	victoryPaid := false
	for _, c := range h.rewards.Calls() {
		if c.kind == "victory" {
			victoryPaid = true
		}
	}
	if !victoryPaid {
		t.Fatalf("victory reward not applied")
	}
}

func TestForceCleanupClearsEverything(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.engine.ForceCleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := h.engine.State(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("state must be gone after cleanup, got %v", err)
	}
	if _, err := h.engine.LastOutcome(ctx); !errors.Is(err, apperrors.ErrNoOutcome) {
		t.Fatalf("outcome must be gone after cleanup, got %v", err)
	}
	if stored, _ := h.store.Load(ctx); stored != nil {
		t.Fatalf("persisted session must be cleared")
	}
}

func TestTickWithoutSessionIsLoggedNoOp(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	store := &memoryStateStore{}
	notifier := &recordingNotifier{}
	var logBuf bytes.Buffer
	engine := service.NewEngine(service.EngineParams{
		Clock:        clk,
		IDs:          fakeID{},
		Catalog:      fakeCatalog{monster: siteMonster(100), cfg: testXPConfig()},
		Sessions:     store,
		Outcomes:     store,
		Observer:     &fakeObserver{},
		Notifier:     notifier,
		Rewards:      &fakeRewards{},
		Logger:       slog.New(slog.NewTextHandler(&logBuf, nil)),
		ResolveDelay: time.Millisecond,
	})
	defer func() { _ = engine.Close() }()

	engine.Tick(context.Background())

	if got := notifier.Outcomes(); len(got) != 0 {
		t.Fatalf("stray tick must not resolve anything: %+v", got)
	}
	if !strings.Contains(logBuf.String(), "tick without active session") {
		t.Fatalf("desynchronized tick must be logged, got: %s", logBuf.String())
	}
}

func TestClockSkewBeforeStartDealsNoDamage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, siteMonster(100))
	ctx := context.Background()

	if _, err := h.engine.StartSession(ctx, "scrollfiend", 1500); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clk.Advance(-10 * time.Second)
	h.engine.Tick(ctx)
	if state, _ := h.engine.State(ctx); state.CurrentHP != 100 {
		t.Fatalf("negative elapsed must not damage, got %d", state.CurrentHP)
	}
}
