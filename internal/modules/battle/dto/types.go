package dto

import "time"

type BattleState struct {
	SessionID        string
	MonsterID        string
	MonsterName      string
	MonsterIcon      string
	CurrentHP        int
	MaxHP            int
	ElapsedSeconds   int
	RemainingSeconds int
	DurationSeconds  int
	HadDistractions  bool
	BattleLog        []string
}

type BattleOutcome struct {
	SessionID       string
	MonsterID       string
	MonsterName     string
	MonsterIcon     string
	Result          string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	ElapsedSeconds  int
	FinalHP         int
	MaxHP           int
	HadDistractions bool
	XPEarned        int
	XPMessages      []string
	PomodoroCredit  bool
	CurrentStreak   int
	BattleLog       []string
}
