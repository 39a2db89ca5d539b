package domain

import (
	"fmt"
	"strings"
	"time"
)

// LogEntry is one line of the battle log. Heal entries coalesce: repeated
// heals at the same HP boundary bump Count instead of appending a new line.
type LogEntry struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Count int    `json:"count,omitempty"`
	HP    int    `json:"hp,omitempty"`
}

const (
	LogKindInfo = "info"
	LogKindHeal = "heal"
)

// Session is the full persisted battle state. Every field needed to rebuild
// the fight after a crash lives here; nothing is kept only in memory.
type Session struct {
	ID                string     `json:"id"`
	MonsterID         string     `json:"monsterId"`
	MonsterName       string     `json:"monsterName"`
	MonsterIcon       string     `json:"monsterIcon"`
	StartTime         time.Time  `json:"startTime"`
	DurationSeconds   int        `json:"durationSeconds"`
	CurrentHP         int        `json:"currentHp"`
	MaxHP             int        `json:"maxHp"`
	IsActive          bool       `json:"isActive"`
	EndedEarly        bool       `json:"endedEarly"`
	HadDistractions   bool       `json:"hadDistractions"`
	StartAwarded      bool       `json:"startAwarded"`
	HalfwayAwarded    bool       `json:"halfwayAwarded"`
	LastAppliedSecond int        `json:"lastAppliedSecond"`
	LastHealUnix      int64      `json:"lastHealUnix"`
	LastTabID         string     `json:"lastTabId"`
	BattleLog         []LogEntry `json:"battleLog"`
}

// NewSession starts a fight against the given monster. The session clock is
// anchored to startTime; all elapsed math re-derives from it.
func NewSession(id, monsterID, monsterName, monsterIcon string, maxHP, durationSeconds int, startTime time.Time) *Session {
	s := &Session{
		ID:              id,
		MonsterID:       monsterID,
		MonsterName:     monsterName,
		MonsterIcon:     monsterIcon,
		StartTime:       startTime,
		DurationSeconds: durationSeconds,
		CurrentHP:       maxHP,
		MaxHP:           maxHP,
		IsActive:        true,
	}
	s.AppendInfo(fmt.Sprintf("A wild %s appears! %d HP of pure distraction.", monsterName, maxHP))
	return s
}

// Elapsed returns whole seconds since the session started, never negative.
func (s *Session) Elapsed(now time.Time) int {
	elapsed := int(now.Sub(s.StartTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns whole seconds until the timer runs out, never negative.
func (s *Session) Remaining(now time.Time) int {
	remaining := s.DurationSeconds - s.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ApplyDamage subtracts hp from the monster, flooring at zero, and advances
// the damage watermark so a replayed tick cannot double-apply.
func (s *Session) ApplyDamage(hp, throughSecond int) {
	s.CurrentHP -= hp
	if s.CurrentHP < 0 {
		s.CurrentHP = 0
	}
	if throughSecond > s.LastAppliedSecond {
		s.LastAppliedSecond = throughSecond
	}
}

// Heal restores hp to the monster, capped at MaxHP, and marks the session as
// distracted. The caller decides whether the heal is allowed at all.
func (s *Session) Heal(hp int) {
	s.CurrentHP += hp
	if s.CurrentHP > s.MaxHP {
		s.CurrentHP = s.MaxHP
	}
	s.HadDistractions = true
}

// AppendInfo adds a plain narration line to the battle log.
func (s *Session) AppendInfo(text string) {
	s.BattleLog = append(s.BattleLog, LogEntry{Kind: LogKindInfo, Text: text})
}

// AppendHeal records a heal in the log. Consecutive heals with the same text
// coalesce into one line with a counter so the log stays readable when a
// distraction site is left open.
func (s *Session) AppendHeal(text string) {
	if n := len(s.BattleLog); n > 0 {
		last := &s.BattleLog[n-1]
		if last.Kind == LogKindHeal && last.Text == text {
			last.Count++
			last.HP = s.CurrentHP
			return
		}
	}
	s.BattleLog = append(s.BattleLog, LogEntry{Kind: LogKindHeal, Text: text, Count: 1, HP: s.CurrentHP})
}

// RenderLog flattens the battle log to display lines, expanding heal counters.
func (s *Session) RenderLog() []string {
	lines := make([]string, 0, len(s.BattleLog))
	for _, entry := range s.BattleLog {
		switch entry.Kind {
		case LogKindHeal:
			if entry.Count > 1 {
				lines = append(lines, fmt.Sprintf("%s (x%d, %d HP)", entry.Text, entry.Count, entry.HP))
			} else {
				lines = append(lines, fmt.Sprintf("%s (%d HP)", entry.Text, entry.HP))
			}
		default:
			lines = append(lines, entry.Text)
		}
	}
	return lines
}

// Validate rejects sessions too corrupt to recover.
func (s *Session) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("session id is empty")
	case strings.TrimSpace(s.MonsterID) == "":
		return fmt.Errorf("session monster id is empty")
	case s.MaxHP <= 0:
		return fmt.Errorf("session max hp must be positive")
	case s.DurationSeconds <= 0:
		return fmt.Errorf("session duration must be positive")
	case s.StartTime.IsZero():
		return fmt.Errorf("session start time is zero")
	}
	return nil
}
