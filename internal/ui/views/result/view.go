package result

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	battledto "focusforge/internal/modules/battle/dto"
	"focusforge/internal/ui/theme"
)

// Model renders the outcome of the last battle.
type Model struct {
	outcome    battledto.BattleOutcome
	hasOutcome bool
	width      int
	height     int
}

func New() Model { return Model{} }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
	}
	return m, nil
}

// SetOutcome shows a freshly resolved battle.
func (m *Model) SetOutcome(outcome battledto.BattleOutcome) {
	m.outcome = outcome
	m.hasOutcome = true
}

func (m Model) View() string {
	if !m.hasOutcome {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No battle resolved yet."))
	}

	o := m.outcome
	var sb strings.Builder

	switch o.Result {
	case "victory":
		sb.WriteString(theme.Good.Render(fmt.Sprintf("⚔ VICTORY — %s %s is defeated!", o.MonsterIcon, o.MonsterName)))
	case "defeat":
		sb.WriteString(theme.Bad.Render(fmt.Sprintf("⏰ TIME'S UP — %s %s survives with %d HP", o.MonsterIcon, o.MonsterName, o.FinalHP)))
	default:
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("🏳 ABANDONED — %s %s lives to distract another day", o.MonsterIcon, o.MonsterName)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(theme.Muted.Render("fought:  ") + formatClock(o.ElapsedSeconds) + " of " + formatClock(o.DurationSeconds) + "\n")
	if o.XPEarned > 0 {
		sb.WriteString(theme.Muted.Render("xp:      ") + theme.Gold.Render(fmt.Sprintf("+%d", o.XPEarned)) + "\n")
	}
	if o.PomodoroCredit {
		sb.WriteString(theme.Muted.Render("credit:  ") + "pomodoro counted\n")
	}
	if o.CurrentStreak > 0 {
		sb.WriteString(theme.Muted.Render("streak:  ") + fmt.Sprintf("%d day(s)", o.CurrentStreak) + "\n")
	}
	if len(o.XPMessages) > 0 {
		sb.WriteString("\n")
		for _, msg := range o.XPMessages {
			sb.WriteString(theme.Gold.Render("★ ") + msg + "\n")
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("tab: back to the Hub"))

	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Padding(1, 2).
		Render(sb.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
