package domain

import "time"

const DateLayout = "2006-01-02"

// HistoryLimit bounds the recent-session history used for the streak
// indicator.
const HistoryLimit = 5

// UserStats is the cumulative, long-lived player record. CurrentXP never
// decreases; CurrentStreak resets to zero on any non-victory outcome.
type UserStats struct {
	MonstersDefeated map[string]int `json:"monsters_defeated"`
	TotalPomodoros   int            `json:"total_pomodoros"`
	CurrentXP        int            `json:"current_xp"`
	CurrentStreak    int            `json:"current_streak"`
	LastActiveDate   string         `json:"last_active_date,omitempty"`
}

func NewUserStats() UserStats {
	return UserStats{MonstersDefeated: map[string]int{}}
}

// Normalize repairs records loaded from storage that predate newer fields.
func (s *UserStats) Normalize() {
	if s.MonstersDefeated == nil {
		s.MonstersDefeated = map[string]int{}
	}
	if s.CurrentStreak < 0 {
		s.CurrentStreak = 0
	}
}

// RecordDailyVictory applies the streak rule for a victory at now. At most one
// increment is granted per calendar day; a gap of more than one day restarts
// the streak at 1.
func (s *UserStats) RecordDailyVictory(now time.Time) {
	day := now.Format(DateLayout)
	if s.LastActiveDate == day {
		return
	}
	last, err := time.Parse(DateLayout, s.LastActiveDate)
	if s.LastActiveDate == "" || err != nil {
		s.CurrentStreak = 1
		s.LastActiveDate = day
		return
	}
	today, _ := time.Parse(DateLayout, day)
	switch days := int(today.Sub(last).Hours() / 24); {
	case days == 1:
		s.CurrentStreak++
	case days > 1:
		s.CurrentStreak = 1
	}
	s.LastActiveDate = day
}

// HistoryEntry is one line of the bounded recent-session log.
type HistoryEntry struct {
	Success bool      `json:"success"`
	Date    time.Time `json:"date"`
}

// Award summarizes the stat changes applied when a session resolves.
type Award struct {
	XPEarned          int
	Breakdown         *Breakdown
	PreviousXP        int
	CurrentXP         int
	PomodoroCompleted bool
	TotalPomodoros    int
	CurrentStreak     int
}

// Overview is the read-model served to the presentation layer.
type Overview struct {
	Stats          UserStats
	Level          int
	Title          string
	XPIntoLevel    int
	XPForNextLevel int
	History        []HistoryEntry
}
