package domain

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	bestiary "focusforge/internal/modules/bestiary/domain"
)

type Bonus struct {
	Kind    string `json:"kind"`
	Amount  int    `json:"amount"`
	Message string `json:"message"`
}

type Breakdown struct {
	BaseXP  int     `json:"base_xp"`
	Bonuses []Bonus `json:"bonuses"`
	FinalXP int     `json:"final_xp"`
}

// MonsterBaseXP computes floor(max(hp*xpPerHP, minXP) * difficultyMultiplier).
func MonsterBaseXP(m bestiary.Monster, cfg bestiary.XPConfig) int {
	base := float64(m.HP) * cfg.Base.XPPerHP
	if base < float64(cfg.Base.MinXP) {
		base = float64(cfg.Base.MinXP)
	}
	if mult, ok := cfg.DifficultyMultipliers[m.ID]; ok && mult > 0 {
		base *= mult
	}
	return int(math.Floor(base))
}

func StreakMultiplierFor(streakDays int, cfg bestiary.XPConfig) float64 {
	mult := 1 + float64(streakDays)*cfg.StreakMultiplier.PerDay
	return math.Min(mult, cfg.StreakMultiplier.MaxMultiplier)
}

// FocusCrit draws a uniformly random multiplier from the configured range.
// The only non-deterministic input to the reward math.
func FocusCrit(rng *rand.Rand, cfg bestiary.XPConfig) float64 {
	lo, hi := cfg.Modifiers.MinFocusCrit, cfg.Modifiers.MaxFocusCrit
	return lo + rng.Float64()*(hi-lo)
}

// SessionXP computes a victory reward. Bonuses apply additively to a running
// total in a fixed order: no-distractions, second-session, streak, crit.
// priorPomodorosToday counts completions strictly before this session.
func SessionXP(m bestiary.Monster, cfg bestiary.XPConfig, hadDistractions bool, priorPomodorosToday, streakDays int, crit float64) Breakdown {
	base := MonsterBaseXP(m, cfg)
	running := base
	var bonuses []Bonus

	if !hadDistractions {
		bonus := int(math.Floor(float64(running) * cfg.Modifiers.NoDistractions))
		running += bonus
		bonuses = append(bonuses, Bonus{
			Kind:    "noDistractions",
			Amount:  bonus,
			Message: renderFeedback(cfg.Feedback.NoDistractions, map[string]string{"bonus": strconv.Itoa(bonus)}),
		})
	}
	if priorPomodorosToday >= 1 {
		bonus := int(math.Floor(float64(running) * cfg.Modifiers.SecondSession))
		running += bonus
		bonuses = append(bonuses, Bonus{
			Kind:    "secondSession",
			Amount:  bonus,
			Message: renderFeedback(cfg.Feedback.SecondSession, map[string]string{"bonus": strconv.Itoa(bonus)}),
		})
	}
	if streakDays > 0 {
		mult := StreakMultiplierFor(streakDays, cfg)
		bonus := int(math.Floor(float64(running) * (mult - 1)))
		running += bonus
		bonuses = append(bonuses, Bonus{
			Kind:   "streakBonus",
			Amount: bonus,
			Message: renderFeedback(cfg.Feedback.StreakBonus, map[string]string{
				"streak": strconv.Itoa(streakDays),
				"bonus":  strconv.Itoa(bonus),
			}),
		})
	}
	if crit > 1 {
		before := running
		running = int(math.Floor(float64(running) * crit))
		bonuses = append(bonuses, Bonus{
			Kind:    "focusCrit",
			Amount:  running - before,
			Message: renderFeedback(cfg.Feedback.FocusCrit, map[string]string{"multiplier": fmt.Sprintf("%.2f", crit)}),
		})
	}

	return Breakdown{BaseXP: base, Bonuses: bonuses, FinalXP: running}
}

// XPRequiredForLevel returns the cumulative XP needed to hold a level.
// Level 1 requires nothing.
func XPRequiredForLevel(level int, cfg bestiary.XPConfig) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(cfg.LevelCurve.BaseXP * math.Pow(float64(level), cfg.LevelCurve.Exponent)))
}

// LevelFor returns the largest level whose requirement is met by totalXP.
func LevelFor(totalXP int, cfg bestiary.XPConfig) int {
	level := 1
	for XPRequiredForLevel(level+1, cfg) <= totalXP {
		level++
	}
	return level
}

func XPIntoLevel(totalXP int, cfg bestiary.XPConfig) int {
	return totalXP - XPRequiredForLevel(LevelFor(totalXP, cfg), cfg)
}

func XPForNextLevel(totalXP int, cfg bestiary.XPConfig) int {
	level := LevelFor(totalXP, cfg)
	return XPRequiredForLevel(level+1, cfg) - XPRequiredForLevel(level, cfg)
}

// TitleFor picks the highest configured title whose threshold the level meets.
// Levels between thresholds inherit the previous tier.
func TitleFor(level int, cfg bestiary.XPConfig) string {
	thresholds := make([]int, 0, len(cfg.Titles))
	for t := range cfg.Titles {
		thresholds = append(thresholds, t)
	}
	sort.Ints(thresholds)
	title := ""
	for _, t := range thresholds {
		if title == "" || level >= t {
			title = cfg.Titles[t]
		}
		if level < t {
			break
		}
	}
	return title
}

func renderFeedback(tpl string, repl map[string]string) string {
	out := tpl
	for key, value := range repl {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
