package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"focusforge/internal/modules/progress/domain"
	progressout "focusforge/internal/modules/progress/port/out"
	"focusforge/internal/platform/clock"
)

// ProgressService owns all writes to UserStats. The session engine calls it
// while holding its own serialization, so methods here never race each other.
type ProgressService struct {
	clock  clock.Clock
	store  progressout.StatsStore
	rules  progressout.RuleSource
	rng    *rand.Rand
	logger *slog.Logger
}

func NewProgressService(clk clock.Clock, store progressout.StatsStore, rules progressout.RuleSource, rng *rand.Rand, logger *slog.Logger) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{clock: clk, store: store, rules: rules, rng: rng, logger: logger}
}

// ApplyVictory computes the XP breakdown and updates every victory-affected
// stat: XP, pomodoro counters, streak, per-monster defeat count, history.
func (p *ProgressService) ApplyVictory(ctx context.Context, monsterID string, hadDistractions bool) (domain.Award, error) {
	monster, err := p.rules.Monster(ctx, monsterID)
	if err != nil {
		return domain.Award{}, err
	}
	cfg, err := p.rules.XPConfig(ctx)
	if err != nil {
		return domain.Award{}, err
	}
	stats, err := p.store.LoadStats(ctx)
	if err != nil {
		return domain.Award{}, fmt.Errorf("load stats: %w", err)
	}
	stats.Normalize()

	now := p.clock.Now()
	day := now.Format(domain.DateLayout)
	prior, err := p.store.DayCount(ctx, day)
	if err != nil {
		p.logger.Warn("day counter unreadable, assuming first session today", "error", err)
		prior = 0
	}

	crit := domain.FocusCrit(p.rng, cfg)
	breakdown := domain.SessionXP(monster, cfg, hadDistractions, prior, stats.CurrentStreak, crit)

	previous := stats.CurrentXP
	stats.CurrentXP += breakdown.FinalXP
	stats.TotalPomodoros++
	stats.MonstersDefeated[monster.ID]++
	stats.RecordDailyVictory(now)

	if err := p.store.SetDayCount(ctx, day, prior+1); err != nil {
		return domain.Award{}, fmt.Errorf("update day counter: %w", err)
	}
	p.appendHistory(ctx, true)
	if err := p.store.SaveStats(ctx, stats); err != nil {
		return domain.Award{}, fmt.Errorf("save stats: %w", err)
	}

	return domain.Award{
		XPEarned:          breakdown.FinalXP,
		Breakdown:         &breakdown,
		PreviousXP:        previous,
		CurrentXP:         stats.CurrentXP,
		PomodoroCompleted: true,
		TotalPomodoros:    stats.TotalPomodoros,
		CurrentStreak:     stats.CurrentStreak,
	}, nil
}

// ApplyTimeoutDefeat resets the streak. When the full duration genuinely
// elapsed the session still counts as a pomodoro, with zero XP.
func (p *ProgressService) ApplyTimeoutDefeat(ctx context.Context, fullDuration bool) (domain.Award, error) {
	stats, err := p.store.LoadStats(ctx)
	if err != nil {
		return domain.Award{}, fmt.Errorf("load stats: %w", err)
	}
	stats.Normalize()
	stats.CurrentStreak = 0
	if fullDuration {
		stats.TotalPomodoros++
		day := p.clock.Now().Format(domain.DateLayout)
		if prior, err := p.store.DayCount(ctx, day); err == nil {
			if err := p.store.SetDayCount(ctx, day, prior+1); err != nil {
				return domain.Award{}, fmt.Errorf("update day counter: %w", err)
			}
		}
	}
	p.appendHistory(ctx, false)
	if err := p.store.SaveStats(ctx, stats); err != nil {
		return domain.Award{}, fmt.Errorf("save stats: %w", err)
	}
	return domain.Award{
		PreviousXP:        stats.CurrentXP,
		CurrentXP:         stats.CurrentXP,
		PomodoroCompleted: fullDuration,
		TotalPomodoros:    stats.TotalPomodoros,
		CurrentStreak:     0,
	}, nil
}

// ApplyAbandon withholds every reward: no XP, no pomodoro credit, streak reset.
func (p *ProgressService) ApplyAbandon(ctx context.Context) (domain.Award, error) {
	stats, err := p.store.LoadStats(ctx)
	if err != nil {
		return domain.Award{}, fmt.Errorf("load stats: %w", err)
	}
	stats.Normalize()
	stats.CurrentStreak = 0
	p.appendHistory(ctx, false)
	if err := p.store.SaveStats(ctx, stats); err != nil {
		return domain.Award{}, fmt.Errorf("save stats: %w", err)
	}
	return domain.Award{
		PreviousXP:     stats.CurrentXP,
		CurrentXP:      stats.CurrentXP,
		TotalPomodoros: stats.TotalPomodoros,
		CurrentStreak:  0,
	}, nil
}

// AwardMicroXP credits a mid-session milestone. Returns the updated total.
func (p *ProgressService) AwardMicroXP(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		stats, err := p.store.LoadStats(ctx)
		return stats.CurrentXP, err
	}
	stats, err := p.store.LoadStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("load stats: %w", err)
	}
	stats.Normalize()
	stats.CurrentXP += amount
	if err := p.store.SaveStats(ctx, stats); err != nil {
		return 0, fmt.Errorf("save stats: %w", err)
	}
	return stats.CurrentXP, nil
}

// Overview assembles the read-model: stats plus derived level and title.
func (p *ProgressService) Overview(ctx context.Context) (domain.Overview, error) {
	cfg, err := p.rules.XPConfig(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	stats, err := p.store.LoadStats(ctx)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("load stats: %w", err)
	}
	stats.Normalize()
	history, err := p.store.LoadHistory(ctx)
	if err != nil {
		p.logger.Warn("session history unreadable", "error", err)
		history = nil
	}
	level := domain.LevelFor(stats.CurrentXP, cfg)
	return domain.Overview{
		Stats:          stats,
		Level:          level,
		Title:          domain.TitleFor(level, cfg),
		XPIntoLevel:    domain.XPIntoLevel(stats.CurrentXP, cfg),
		XPForNextLevel: domain.XPForNextLevel(stats.CurrentXP, cfg),
		History:        history,
	}, nil
}

func (p *ProgressService) appendHistory(ctx context.Context, success bool) {
	history, err := p.store.LoadHistory(ctx)
	if err != nil {
		p.logger.Warn("session history unreadable, starting fresh", "error", err)
		history = nil
	}
	history = append(history, domain.HistoryEntry{Success: success, Date: p.clock.Now()})
	if len(history) > domain.HistoryLimit {
		history = history[len(history)-domain.HistoryLimit:]
	}
	if err := p.store.SaveHistory(ctx, history); err != nil {
		p.logger.Warn("session history not saved", "error", err)
	}
}
