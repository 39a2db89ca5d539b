package battle

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	battledto "focusforge/internal/modules/battle/dto"
	"focusforge/internal/ui/theme"
)

// Model renders a live battle. It is push-driven: the app model feeds it
// snapshots as the engine ticks, so there are no commands of its own.
type Model struct {
	state    battledto.BattleState
	hasState bool
	hpBar    progress.Model
	log      viewport.Model
	width    int
	height   int
}

func New() Model {
	bar := progress.New(progress.WithScaledGradient(string(theme.Red), string(theme.Green)))
	bar.ShowPercentage = false

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(0, 1)

	return Model{hpBar: bar, log: vp}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	}
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

// SetSnapshot replaces the rendered battle state with a fresh engine frame.
func (m *Model) SetSnapshot(state battledto.BattleState) {
	m.state = state
	m.hasState = true
	m.log.SetContent(strings.Join(state.BattleLog, "\n"))
	m.log.GotoBottom()
}

// Clear empties the view after the battle resolves.
func (m *Model) Clear() {
	m.hasState = false
	m.state = battledto.BattleState{}
	m.log.SetContent("")
}

func (m Model) View() string {
	if !m.hasState {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No battle in progress. Pick a monster in the Hub."))
	}

	s := m.state
	header := theme.Title.Render(fmt.Sprintf("%s %s", s.MonsterIcon, s.MonsterName))

	ratio := 0.0
	if s.MaxHP > 0 {
		ratio = float64(s.CurrentHP) / float64(s.MaxHP)
	}
	hpLine := fmt.Sprintf("%s  %s", m.hpBar.ViewAs(ratio),
		theme.Hot.Render(fmt.Sprintf("%d/%d HP", s.CurrentHP, s.MaxHP)))

	timer := theme.Gold.Render(fmt.Sprintf("⏳ %s left", formatClock(s.RemainingSeconds)))
	focus := theme.Good.Render("focused")
	if s.HadDistractions {
		focus = theme.Bad.Render("distracted")
	}
	statusLine := timer + "  " + theme.Muted.Render("│") + "  " + focus

	logPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(m.width - 2).
		Height(m.logHeight()).
		Render(m.log.View())

	hint := theme.Muted.Render("e: end battle early (no reward)")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", hpLine, statusLine, "", logPane, hint)
}

func (m *Model) resize() {
	m.hpBar.Width = m.width - 16
	if m.hpBar.Width < 10 {
		m.hpBar.Width = 10
	}
	m.log.Width = m.width - 4
	m.log.Height = m.logHeight()
}

func (m Model) logHeight() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
