package dto

import "time"

type HistoryItem struct {
	Success bool
	Date    time.Time
}

type StatsOutput struct {
	TotalPomodoros   int
	CurrentXP        int
	CurrentStreak    int
	Level            int
	Title            string
	XPIntoLevel      int
	XPForNextLevel   int
	MonstersDefeated map[string]int
	MostDefeated     string
	History          []HistoryItem
}
