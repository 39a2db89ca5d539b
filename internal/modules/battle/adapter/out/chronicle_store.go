package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"focusforge/internal/modules/battle/domain"
	battleout "focusforge/internal/modules/battle/port/out"
	"focusforge/internal/platform/markdown"
	"focusforge/internal/platform/slug"
)

// ChronicleStore archives each finished battle as a markdown note with YAML
// frontmatter, one file per battle, so the history is grep-able and readable
// without the app.
type ChronicleStore struct {
	dir string
}

func NewChronicleStore(dir string) *ChronicleStore {
	return &ChronicleStore{dir: dir}
}

func (c *ChronicleStore) WriteReport(ctx context.Context, outcome domain.Outcome) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chronicle dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.md",
		outcome.EndTime.UTC().Format("2006-01-02-150405"),
		slug.Make(outcome.MonsterName),
		string(outcome.Result))
	path := filepath.Join(c.dir, name)

	meta := map[string]any{
		"session":      outcome.SessionID,
		"monster":      outcome.MonsterID,
		"result":       string(outcome.Result),
		"started":      outcome.StartTime.UTC().Format(time.RFC3339),
		"ended":        outcome.EndTime.UTC().Format(time.RFC3339),
		"duration":     outcome.DurationSeconds,
		"elapsed":      outcome.ElapsedSeconds,
		"final_hp":     outcome.FinalHP,
		"max_hp":       outcome.MaxHP,
		"xp_earned":    outcome.XPEarned,
		"distractions": outcome.HadDistractions,
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# %s %s — %s\n\n", outcome.MonsterIcon, outcome.MonsterName, titleFor(outcome.Result))
	fmt.Fprintf(&body, "Fought for %s of a planned %s.\n\n",
		(time.Duration(outcome.ElapsedSeconds) * time.Second).String(),
		(time.Duration(outcome.DurationSeconds) * time.Second).String())
	if len(outcome.XPMessages) > 0 {
		body.WriteString("## Spoils\n\n")
		for _, msg := range outcome.XPMessages {
			fmt.Fprintf(&body, "- %s\n", msg)
		}
		body.WriteString("\n")
	}
	if len(outcome.BattleLog) > 0 {
		body.WriteString("## Battle log\n\n")
		for _, line := range outcome.BattleLog {
			fmt.Fprintf(&body, "- %s\n", line)
		}
	}

	content, err := markdown.RenderFrontmatter(meta, body.String())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write battle report: %w", err)
	}
	return path, nil
}

func titleFor(result domain.Result) string {
	switch result {
	case domain.ResultVictory:
		return "Victory"
	case domain.ResultDefeat:
		return "Defeat"
	default:
		return "Abandoned"
	}
}

var _ battleout.ChronicleStore = (*ChronicleStore)(nil)
