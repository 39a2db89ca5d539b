package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"focusforge/internal/modules/battle/domain"
	"focusforge/internal/modules/battle/port/out"
	bestiarydomain "focusforge/internal/modules/bestiary/domain"
	"focusforge/internal/platform/clock"
	apperrors "focusforge/internal/platform/errors"
	"focusforge/internal/platform/id"
)

const (
	// One point of monster HP falls per focused second.
	damagePerSecond = 1
	// Visiting a trigger site heals the monster, but at most once per window.
	siteHealAmount      = 1
	siteHealWindow      = 3 * time.Second
	tabSwitchHealAmount = 2

	defaultTickInterval = time.Second
	defaultResolveDelay = 500 * time.Millisecond
)

// EngineParams carries every collaborator the engine needs. All fields except
// TickInterval and ResolveDelay are required.
type EngineParams struct {
	Clock     clock.Clock
	IDs       id.Generator
	Catalog   out.MonsterCatalog
	Sessions  out.SessionStore
	Outcomes  out.OutcomeStore
	Observer  out.ActivityObserver
	Notifier  out.Notifier
	Chronicle out.ChronicleStore
	Rewards   out.RewardLedger
	Logger    *slog.Logger

	TickInterval time.Duration
	ResolveDelay time.Duration
}

// Engine drives a battle from start to resolution. It is the single writer of
// session state: every mutation, including ticks from the internal timer, runs
// under one mutex, so recovery, ticks and user commands can never interleave.
type Engine struct {
	mu sync.Mutex

	clk       clock.Clock
	ids       id.Generator
	catalog   out.MonsterCatalog
	sessions  out.SessionStore
	outcomes  out.OutcomeStore
	observer  out.ActivityObserver
	notifier  out.Notifier
	chronicle out.ChronicleStore
	rewards   out.RewardLedger
	logger    *slog.Logger

	tickInterval time.Duration
	resolveDelay time.Duration

	session *domain.Session
	monster bestiarydomain.Monster

	ticker   clock.Ticker
	tickStop chan struct{}

	// generation invalidates delayed cleanups when a new battle starts
	// before they fire.
	generation uint64
}

func NewEngine(params EngineParams) *Engine {
	if params.TickInterval <= 0 {
		params.TickInterval = defaultTickInterval
	}
	if params.ResolveDelay <= 0 {
		params.ResolveDelay = defaultResolveDelay
	}
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	return &Engine{
		clk:          params.Clock,
		ids:          params.IDs,
		catalog:      params.Catalog,
		sessions:     params.Sessions,
		outcomes:     params.Outcomes,
		observer:     params.Observer,
		notifier:     params.Notifier,
		chronicle:    params.Chronicle,
		rewards:      params.Rewards,
		logger:       params.Logger,
		tickInterval: params.TickInterval,
		resolveDelay: params.ResolveDelay,
	}
}

// StartSession begins a battle against the chosen monster. A battle already
// live is force-terminated first: timer off, state discarded, no outcome —
// a duplicate start command wins over the fight it interrupts. When no
// duration override is given the monster's HP doubles as the duration, one
// second per hit point.
func (e *Engine) StartSession(ctx context.Context, monsterID string, durationSeconds int) (domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if durationSeconds < 0 {
		return domain.Snapshot{}, fmt.Errorf("duration must not be negative: %w", apperrors.ErrInvalidInput)
	}

	monster, err := e.catalog.Monster(ctx, monsterID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if durationSeconds == 0 {
		durationSeconds = monster.HP
	}

	if e.session != nil && e.session.IsActive {
		e.disarmLocked()
		e.logger.Info("force-terminating battle for a new start", "session", e.session.ID, "monster", e.session.MonsterID)
		e.session = nil
	}

	now := e.clk.Now()
	session := domain.NewSession(e.ids.New(), monster.ID, monster.Name, monster.Icon, monster.HP, durationSeconds, now)

	if err := e.outcomes.ClearOutcome(ctx); err != nil {
		e.logger.Warn("clear stale outcome", "error", err)
	}
	if err := e.sessions.Save(ctx, session); err != nil {
		return domain.Snapshot{}, fmt.Errorf("persist new session: %w", err)
	}

	e.session = session
	e.monster = monster
	e.generation++
	e.armLocked()

	snapshot := e.snapshotLocked(now)
	e.notifier.BattleStateUpdated(snapshot)
	e.logger.Info("battle started",
		"session", session.ID, "monster", monster.ID, "hp", monster.HP, "duration", durationSeconds)
	return snapshot, nil
}

// Tick advances the battle to the current clock time. It is called by the
// internal timer, but is also safe to call directly; a tick that arrives
// late applies all the focus time it missed.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(ctx, e.clk.Now())
}

// EndSessionEarly abandons the current battle. The monster survives and no
// reward is paid out.
func (e *Engine) EndSessionEarly(ctx context.Context) (domain.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || !e.session.IsActive {
		return domain.Outcome{}, apperrors.ErrNoActiveSession
	}
	e.session.EndedEarly = true
	e.session.AppendInfo("You fled the battle!")
	return e.resolveLocked(ctx, e.clk.Now(), domain.ResultAbandoned)
}

// Recover reattaches to a session persisted by an earlier process. Offline
// focus time is credited in one catch-up tick; if that already decides the
// battle, it resolves immediately instead of re-arming the timer.
func (e *Engine) Recover(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.session.IsActive {
		return nil
	}

	session, err := e.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if session == nil {
		return nil
	}
	if !session.IsActive {
		// Leftover from a resolve interrupted before its delayed clear.
		if err := e.sessions.Clear(ctx); err != nil {
			e.logger.Warn("clear resolved session", "error", err)
		}
		return nil
	}
	if err := session.Validate(); err != nil {
		e.logger.Warn("discarding corrupt session", "error", err)
		if clearErr := e.sessions.Clear(ctx); clearErr != nil {
			e.logger.Warn("clear corrupt session", "error", clearErr)
		}
		return nil
	}

	monster, err := e.catalog.Monster(ctx, session.MonsterID)
	if err != nil {
		return fmt.Errorf("resolve monster %s for recovery: %w", session.MonsterID, err)
	}

	now := e.clk.Now()
	elapsed := session.Elapsed(now)

	e.session = session
	e.monster = monster
	e.generation++

	if session.Remaining(now) <= 0 {
		// The clock ran out entirely while the engine was unloaded. Settle
		// from the last persisted HP; no offline catch-up damage, since
		// nothing was fighting while the process was down. The outcome is
		// anchored to the deadline, not to when we happened to notice.
		deadline := session.StartTime.Add(time.Duration(session.DurationSeconds) * time.Second)
		result := domain.ResultDefeat
		if session.CurrentHP <= 0 {
			result = domain.ResultVictory
			session.AppendInfo(fmt.Sprintf("%s collapses! Victory!", session.MonsterName))
		} else {
			session.AppendInfo(fmt.Sprintf("Time's up. %s slinks away with %d HP left.", session.MonsterName, session.CurrentHP))
		}
		e.logger.Info("recovered battle already expired", "session", session.ID, "result", string(result), "hp", session.CurrentHP)
		if _, err := e.resolveLocked(ctx, deadline, result); err != nil {
			return fmt.Errorf("resolve expired session: %w", err)
		}
		return nil
	}

	// Milestones that were passed while offline are marked as spent without
	// paying out: we cannot tell an unpaid milestone from one whose payout
	// landed just before the crash, and paying twice is the worse failure.
	if elapsed >= 1 {
		session.StartAwarded = true
	}
	if elapsed >= session.DurationSeconds/2 {
		session.HalfwayAwarded = true
	}

	e.logger.Info("recovered battle", "session", session.ID, "monster", monster.ID, "elapsed", elapsed)

	e.tickLocked(ctx, now)
	if e.session != nil && e.session.IsActive {
		e.armLocked()
	}
	return nil
}

// State reports the live battle, or ErrNoActiveSession when there is none.
func (e *Engine) State(ctx context.Context) (domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || !e.session.IsActive {
		return domain.Snapshot{}, apperrors.ErrNoActiveSession
	}
	return e.snapshotLocked(e.clk.Now()), nil
}

// LastOutcome returns the stored outcome of the most recent battle without
// consuming it.
func (e *Engine) LastOutcome(ctx context.Context) (domain.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcome, err := e.outcomes.LoadOutcome(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	if outcome == nil {
		return domain.Outcome{}, apperrors.ErrNoOutcome
	}
	return *outcome, nil
}

// ForceCleanup wipes the live session and stored outcome unconditionally.
// Escape hatch for state corrupted beyond what Recover tolerates.
func (e *Engine) ForceCleanup(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.disarmLocked()
	e.session = nil
	e.generation++

	if err := e.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := e.outcomes.ClearOutcome(ctx); err != nil {
		return fmt.Errorf("clear outcome: %w", err)
	}
	e.logger.Info("forced cleanup of battle state")
	return nil
}

// Close stops the timer and releases the activity observer.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.disarmLocked()
	e.mu.Unlock()
	if e.observer != nil {
		return e.observer.Close()
	}
	return nil
}

func (e *Engine) armLocked() {
	e.disarmLocked()
	ticker := e.clk.NewTicker(e.tickInterval)
	stop := make(chan struct{})
	e.ticker = ticker
	e.tickStop = stop
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				e.Tick(context.Background())
			}
		}
	}()
}

func (e *Engine) disarmLocked() {
	if e.ticker != nil {
		e.ticker.Stop()
		close(e.tickStop)
		e.ticker = nil
		e.tickStop = nil
	}
}

func (e *Engine) tickLocked(ctx context.Context, now time.Time) {
	s := e.session
	if s == nil || !s.IsActive {
		// Desynchronized timer: a tick arrived with nothing to fight.
		e.logger.Warn("tick without active session, disarming clock")
		e.disarmLocked()
		return
	}

	elapsed := s.Elapsed(now)

	obs, err := e.observer.Sample(ctx)
	if err != nil {
		e.logger.Warn("activity sample failed", "error", err)
		obs = out.Observation{}
	}

	site, onTriggerSite := "", false
	if obs.Hostname != "" {
		site, onTriggerSite = e.monster.MatchTriggerSite(obs.Hostname)
	}
	tabSwitched := e.monster.TriggerEvent == bestiarydomain.TriggerTabSwitch &&
		obs.TabID != "" && s.LastTabID != "" && obs.TabID != s.LastTabID

	// Damage covers every second since the last applied one, so a process
	// that slept or died still credits the focus time. The battle clock
	// stops at the duration even when the wall clock ran past it. A firing
	// trigger, site or tab switch, zeroes the damage for this tick.
	throughSecond := elapsed
	if throughSecond > s.DurationSeconds {
		throughSecond = s.DurationSeconds
	}
	if pending := throughSecond - s.LastAppliedSecond; pending > 0 {
		if onTriggerSite || tabSwitched {
			s.ApplyDamage(0, throughSecond)
		} else {
			s.ApplyDamage(pending*damagePerSecond, throughSecond)
		}
	}

	if onTriggerSite && now.Unix()-s.LastHealUnix >= int64(siteHealWindow/time.Second) {
		s.Heal(siteHealAmount)
		s.LastHealUnix = now.Unix()
		s.AppendHeal(fmt.Sprintf("%s feeds on %s!", s.MonsterName, site))
	}

	if tabSwitched {
		s.Heal(tabSwitchHealAmount)
		s.AppendHeal(fmt.Sprintf("%s thrives on your tab hopping!", s.MonsterName))
	}
	if obs.TabID != "" {
		s.LastTabID = obs.TabID
	}

	e.applyMilestonesLocked(ctx, elapsed)

	if err := e.sessions.Save(ctx, s); err != nil {
		e.logger.Warn("persist session tick", "error", err)
	}

	switch {
	case s.CurrentHP <= 0:
		s.AppendInfo(fmt.Sprintf("%s collapses! Victory!", s.MonsterName))
		if _, err := e.resolveLocked(ctx, now, domain.ResultVictory); err != nil {
			e.logger.Error("resolve victory", "error", err)
		}
	case s.Remaining(now) <= 0:
		s.AppendInfo(fmt.Sprintf("Time's up. %s slinks away with %d HP left.", s.MonsterName, s.CurrentHP))
		if _, err := e.resolveLocked(ctx, now, domain.ResultDefeat); err != nil {
			e.logger.Error("resolve defeat", "error", err)
		}
	default:
		e.notifier.BattleStateUpdated(e.snapshotLocked(now))
	}
}

func (e *Engine) applyMilestonesLocked(ctx context.Context, elapsed int) {
	s := e.session
	if s.StartAwarded && s.HalfwayAwarded {
		return
	}
	xp, err := e.catalog.XPConfig(ctx)
	if err != nil {
		e.logger.Warn("load xp config for milestones", "error", err)
		return
	}

	if !s.StartAwarded && elapsed >= 1 {
		s.StartAwarded = true
		if _, err := e.rewards.AwardMicroXP(ctx, xp.Base.XPForStarting); err != nil {
			e.logger.Warn("award start bonus", "error", err)
		} else {
			s.AppendInfo(fmt.Sprintf("+%d XP for entering the fray!", xp.Base.XPForStarting))
		}
	}
	if !s.HalfwayAwarded && elapsed >= s.DurationSeconds/2 {
		s.HalfwayAwarded = true
		if _, err := e.rewards.AwardMicroXP(ctx, xp.Base.XPForHalfway); err != nil {
			e.logger.Warn("award halfway bonus", "error", err)
		} else {
			s.AppendInfo(fmt.Sprintf("+%d XP — halfway there, keep pressing!", xp.Base.XPForHalfway))
		}
	}
}

// resolveLocked finishes the battle: timer off first, rewards settled, outcome
// persisted, then listeners told. The persisted session lingers briefly so a
// watcher can render the final frame, and is cleared afterwards unless a new
// battle has started in the meantime.
func (e *Engine) resolveLocked(ctx context.Context, now time.Time, result domain.Result) (domain.Outcome, error) {
	e.disarmLocked()

	s := e.session
	s.IsActive = false
	elapsed := s.Elapsed(now)

	outcome := domain.Outcome{
		SessionID:       s.ID,
		MonsterID:       s.MonsterID,
		MonsterName:     s.MonsterName,
		MonsterIcon:     s.MonsterIcon,
		Result:          result,
		StartTime:       s.StartTime,
		EndTime:         now,
		DurationSeconds: s.DurationSeconds,
		ElapsedSeconds:  elapsed,
		FinalHP:         s.CurrentHP,
		MaxHP:           s.MaxHP,
		HadDistractions: s.HadDistractions,
		BattleLog:       s.RenderLog(),
	}

	switch result {
	case domain.ResultVictory:
		award, err := e.rewards.ApplyVictory(ctx, s.MonsterID, s.HadDistractions)
		if err != nil {
			e.logger.Error("apply victory reward", "error", err)
		} else {
			outcome.XPEarned = award.XPEarned
			outcome.PomodoroCredit = award.PomodoroCompleted
			outcome.CurrentStreak = award.CurrentStreak
			if award.Breakdown != nil {
				for _, bonus := range award.Breakdown.Bonuses {
					outcome.XPMessages = append(outcome.XPMessages, bonus.Message)
				}
			}
		}
	case domain.ResultDefeat:
		fullDuration := elapsed >= s.DurationSeconds-2 && s.CurrentHP > 0 && !s.EndedEarly
		award, err := e.rewards.ApplyTimeoutDefeat(ctx, fullDuration)
		if err != nil {
			e.logger.Error("apply defeat", "error", err)
		} else {
			outcome.PomodoroCredit = award.PomodoroCompleted
			outcome.CurrentStreak = award.CurrentStreak
		}
	case domain.ResultAbandoned:
		if award, err := e.rewards.ApplyAbandon(ctx); err != nil {
			e.logger.Error("apply abandon", "error", err)
		} else {
			outcome.CurrentStreak = award.CurrentStreak
		}
	}

	if err := e.outcomes.SaveOutcome(ctx, &outcome); err != nil {
		return domain.Outcome{}, fmt.Errorf("persist outcome: %w", err)
	}
	if err := e.sessions.Save(ctx, s); err != nil {
		e.logger.Warn("persist resolved session", "error", err)
	}
	if e.chronicle != nil {
		if path, err := e.chronicle.WriteReport(ctx, outcome); err != nil {
			e.logger.Warn("write battle report", "error", err)
		} else {
			e.logger.Info("battle report written", "path", path)
		}
	}

	e.notifier.SessionResolved(outcome)
	e.logger.Info("battle resolved",
		"session", s.ID, "result", string(result), "elapsed", elapsed, "finalHp", s.CurrentHP, "xp", outcome.XPEarned)

	e.session = nil
	gen := e.generation
	time.AfterFunc(e.resolveDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.generation != gen {
			return
		}
		if err := e.sessions.Clear(context.Background()); err != nil {
			e.logger.Warn("delayed session clear", "error", err)
		}
	})

	return outcome, nil
}

func (e *Engine) snapshotLocked(now time.Time) domain.Snapshot {
	s := e.session
	return domain.Snapshot{
		SessionID:        s.ID,
		MonsterID:        s.MonsterID,
		MonsterName:      s.MonsterName,
		MonsterIcon:      s.MonsterIcon,
		CurrentHP:        s.CurrentHP,
		MaxHP:            s.MaxHP,
		ElapsedSeconds:   s.Elapsed(now),
		RemainingSeconds: s.Remaining(now),
		DurationSeconds:  s.DurationSeconds,
		HadDistractions:  s.HadDistractions,
		BattleLog:        s.RenderLog(),
	}
}
