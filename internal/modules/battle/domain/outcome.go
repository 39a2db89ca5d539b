package domain

import "time"

// Result classifies how a battle ended.
type Result string

const (
	ResultVictory   Result = "victory"
	ResultDefeat    Result = "defeat"
	ResultAbandoned Result = "abandoned"
)

// Outcome is the durable record of a finished battle, written before anyone
// is told the battle ended.
type Outcome struct {
	SessionID       string    `json:"sessionId"`
	MonsterID       string    `json:"monsterId"`
	MonsterName     string    `json:"monsterName"`
	MonsterIcon     string    `json:"monsterIcon"`
	Result          Result    `json:"result"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int       `json:"durationSeconds"`
	ElapsedSeconds  int       `json:"elapsedSeconds"`
	FinalHP         int       `json:"finalHp"`
	MaxHP           int       `json:"maxHp"`
	HadDistractions bool      `json:"hadDistractions"`
	XPEarned        int       `json:"xpEarned"`
	XPMessages      []string  `json:"xpMessages,omitempty"`
	PomodoroCredit  bool      `json:"pomodoroCredit"`
	CurrentStreak   int       `json:"currentStreak"`
	BattleLog       []string  `json:"battleLog,omitempty"`
}

// Snapshot is a read-only view of a live battle for status displays.
type Snapshot struct {
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
