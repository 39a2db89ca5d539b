package domain

import "fmt"

// XPConfig holds the reward and leveling rules. Read-only at runtime.
type XPConfig struct {
	Base                  XPBase             `yaml:"base"`
	Modifiers             XPModifiers        `yaml:"modifiers"`
	LevelCurve            LevelCurve         `yaml:"level_curve"`
	StreakMultiplier      StreakMultiplier   `yaml:"streak_multiplier"`
	Titles                map[int]string     `yaml:"titles"`
	Feedback              Feedback           `yaml:"feedback"`
	DifficultyMultipliers map[string]float64 `yaml:"difficulty_multipliers,omitempty"`
}

type XPBase struct {
	XPPerSession  int     `yaml:"xp_per_session"`
	XPForStarting int     `yaml:"xp_for_starting"`
	XPForHalfway  int     `yaml:"xp_for_halfway"`
	XPPerHP       float64 `yaml:"xp_per_hp"`
	MinXP         int     `yaml:"min_xp"`
}

type XPModifiers struct {
	NoDistractions float64 `yaml:"no_distractions"`
	SecondSession  float64 `yaml:"second_session"`
	MinFocusCrit   float64 `yaml:"min_focus_crit"`
	MaxFocusCrit   float64 `yaml:"max_focus_crit"`
}

type LevelCurve struct {
	BaseXP   float64 `yaml:"base_xp"`
	Exponent float64 `yaml:"exponent"`
}

type StreakMultiplier struct {
	PerDay        float64 `yaml:"per_day"`
	MaxMultiplier float64 `yaml:"max_multiplier"`
}

// Feedback holds display message templates. Placeholders: {bonus}, {streak},
// {multiplier}.
type Feedback struct {
	StartSession   string `yaml:"start_session"`
	Halfway        string `yaml:"halfway"`
	NoDistractions string `yaml:"no_distractions"`
	SecondSession  string `yaml:"second_session"`
	StreakBonus    string `yaml:"streak_bonus"`
	FocusCrit      string `yaml:"focus_crit"`
	Victory        string `yaml:"victory"`
	LevelUp        string `yaml:"level_up"`
}

func (c XPConfig) Validate() error {
	if c.Base.XPPerHP <= 0 {
		return fmt.Errorf("xp config: base.xp_per_hp must be positive")
	}
	if c.Base.MinXP < 0 {
		return fmt.Errorf("xp config: base.min_xp must not be negative")
	}
	if c.LevelCurve.BaseXP <= 0 {
		return fmt.Errorf("xp config: level_curve.base_xp must be positive")
	}
	if c.LevelCurve.Exponent < 1 {
		return fmt.Errorf("xp config: level_curve.exponent must be at least 1")
	}
	if c.Modifiers.MinFocusCrit < 1 || c.Modifiers.MaxFocusCrit < c.Modifiers.MinFocusCrit {
		return fmt.Errorf("xp config: focus crit range is invalid")
	}
	if c.StreakMultiplier.MaxMultiplier < 1 {
		return fmt.Errorf("xp config: streak_multiplier.max_multiplier must be at least 1")
	}
	if len(c.Titles) == 0 {
		return fmt.Errorf("xp config: at least one title is required")
	}
	return nil
}

// Catalog is the loaded configuration store: monster definitions plus reward
// rules.
type Catalog struct {
	Monsters map[string]Monster
	XP       XPConfig
}

func (c Catalog) Validate() error {
	if len(c.Monsters) == 0 {
		return fmt.Errorf("catalog has no monsters")
	}
	for _, m := range c.Monsters {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return c.XP.Validate()
}
