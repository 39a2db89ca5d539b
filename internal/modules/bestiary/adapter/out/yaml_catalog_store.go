package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"focusforge/internal/modules/bestiary/domain"
	bestiaryout "focusforge/internal/modules/bestiary/port/out"
)

// YAMLCatalogStore reads monster definitions and XP rules from two YAML files.
// On a fresh data dir it seeds both files with the default catalog so the
// first run works out of the box.
type YAMLCatalogStore struct {
	monstersPath string
	xpConfigPath string
}

func NewYAMLCatalogStore(monstersPath, xpConfigPath string) bestiaryout.CatalogSource {
	return &YAMLCatalogStore{monstersPath: monstersPath, xpConfigPath: xpConfigPath}
}

func (s *YAMLCatalogStore) Load(_ context.Context) (domain.Catalog, error) {
	monsters, err := loadOrSeed(s.monstersPath, defaultMonsters, decodeMonsters)
	if err != nil {
		return domain.Catalog{}, err
	}
	xp, err := loadOrSeed(s.xpConfigPath, defaultXPConfig, decodeXPConfig)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.Catalog{Monsters: monsters, XP: xp}, nil
}

func loadOrSeed[T any](path string, seed func() T, decode func([]byte) (T, error)) (T, error) {
	var zero T
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		value := seed()
		if err := writeSeed(path, value); err != nil {
			return zero, err
		}
		return value, nil
	}
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return decode(raw)
}

func writeSeed(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	raw, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal default catalog: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("seed %s: %w", filepath.Base(path), err)
	}
	return nil
}

func decodeMonsters(raw []byte) (map[string]domain.Monster, error) {
	monsters := map[string]domain.Monster{}
	if err := yaml.Unmarshal(raw, &monsters); err != nil {
		return nil, fmt.Errorf("decode monsters catalog: %w", err)
	}
	for key, m := range monsters {
		if m.ID == "" {
			m.ID = key
			monsters[key] = m
		}
	}
	return monsters, nil
}

func decodeXPConfig(raw []byte) (domain.XPConfig, error) {
	cfg := domain.XPConfig{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return domain.XPConfig{}, fmt.Errorf("decode xp config: %w", err)
	}
	return cfg, nil
}

func defaultMonsters() map[string]domain.Monster {
	return map[string]domain.Monster{
		"scrollfiend": {
			ID:           "scrollfiend",
			Name:         "Scrollfiend",
			Icon:         "assets/scrollfiend.png",
			Description:  "Feeds on endless feeds. Weak to sustained attention.",
			HP:           1000,
			TriggerSites: []string{"reddit.com", "twitter.com", "instagram.com", "facebook.com"},
		},
		"tubewyrm": {
			ID:           "tubewyrm",
			Name:         "Tubewyrm",
			Icon:         "assets/tubewyrm.png",
			Description:  "Grows stronger with every autoplayed video.",
			HP:           1500,
			TriggerSites: []string{"youtube.com", "netflix.com", "twitch.tv"},
		},
		"tabberwock": {
			ID:           "tabberwock",
			Name:         "Tabberwock",
			Icon:         "assets/tabberwock.png",
			Description:  "Thrives on scattered attention. Every tab switch is a meal.",
			HP:           2000,
			TriggerEvent: domain.TriggerTabSwitch,
		},
	}
}

func defaultXPConfig() domain.XPConfig {
	return domain.XPConfig{
		Base: domain.XPBase{
			XPPerSession:  100,
			XPForStarting: 5,
			XPForHalfway:  10,
			XPPerHP:       0.1,
			MinXP:         50,
		},
		Modifiers: domain.XPModifiers{
			NoDistractions: 0.25,
			SecondSession:  0.10,
			MinFocusCrit:   1.0,
			MaxFocusCrit:   1.5,
		},
		LevelCurve: domain.LevelCurve{BaseXP: 100, Exponent: 1.5},
		StreakMultiplier: domain.StreakMultiplier{
			PerDay:        0.05,
			MaxMultiplier: 2.0,
		},
		Titles: map[int]string{
			1:  "Fledgling Focuser",
			5:  "Apprentice of Attention",
			10: "Distraction Slayer",
			20: "Warden of the Deep Work",
			35: "Archmage of Flow",
			50: "Grandmaster of Focus",
		},
		Feedback: domain.Feedback{
			StartSession:   "The battle begins! +{bonus} XP.",
			Halfway:        "Halfway there! +{bonus} XP.",
			NoDistractions: "Flawless focus! +{bonus} XP.",
			SecondSession:  "Second session today! +{bonus} XP.",
			StreakBonus:    "{streak}-day streak! +{bonus} XP.",
			FocusCrit:      "Focus crit x{multiplier}!",
			Victory:        "Victory! {monster} defeated.",
			LevelUp:        "Level up! You are now level {level}.",
		},
		DifficultyMultipliers: map[string]float64{"tabberwock": 1.2},
	}
}
