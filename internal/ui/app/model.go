package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	battledto "focusforge/internal/modules/battle/dto"
	bestiarydto "focusforge/internal/modules/bestiary/dto"
	progressdto "focusforge/internal/modules/progress/dto"
	apperrors "focusforge/internal/platform/errors"
	"focusforge/internal/ui/theme"
	battleview "focusforge/internal/ui/views/battle"
	hubview "focusforge/internal/ui/views/hub"
	resultview "focusforge/internal/ui/views/result"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.

type bestiaryPort interface {
	ListMonsters(ctx context.Context) ([]bestiarydto.MonsterOutput, error)
}

type battlePort interface {
	StartSession(ctx context.Context, monsterID string, durationSeconds int) (battledto.BattleState, error)
	EndSessionEarly(ctx context.Context) (battledto.BattleOutcome, error)
	GetState(ctx context.Context) (battledto.BattleState, error)
	Recover(ctx context.Context) error
}

type progressPort interface {
	Overview(ctx context.Context) (progressdto.StatsOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabHub tabID = iota
	tabBattle
	tabResult
	tabCount
)

var tabLabels = [tabCount]string{"Hub", "Battle", "Result"}

// ─── async messages ───────────────────────────────────────────────────────────

type recoveredMsg struct {
	state battledto.BattleState
	live  bool
	err   error
}

type battleStartedMsg struct {
	state battledto.BattleState
	err   error
}

type battleEndedMsg struct {
	outcome battledto.BattleOutcome
	err     error
}

type engineEventMsg struct {
	event battledto.Event
	ok    bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab   key.Binding
	Help  key.Binding
	Quit  key.Binding
	Fight key.Binding
	End   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Fight: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter/1/2/3", "fight")),
		End:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end early")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Fight, k.End, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Fight, k.End},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing and the engine
// event subscription; battle semantics live behind the battle port, rendering
// in the sub-views.
type Model struct {
	battle battlePort

	hubView    hubview.Model
	battleView battleview.Model
	resultView resultview.Model

	events <-chan battledto.Event

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	inBattle  bool
	status    string
	width     int
	height    int
}

func NewModel(bestiary bestiaryPort, battle battlePort, progress progressPort, events <-chan battledto.Event) Model {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return Model{
		battle:     battle,
		hubView:    hubview.New(bestiary, progress, rng),
		battleView: battleview.New(),
		resultView: resultview.New(),
		events:     events,
		activeTab:  tabHub,
		keys:       defaultKeys(),
		help:       help.New(),
		status:     "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.hubView.Init(),
		m.recoverCmd(),
		m.waitForEventCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		m.propagateSize()

	case recoveredMsg:
		if msg.err != nil {
			m.status = "recovery: " + msg.err.Error()
		} else if msg.live {
			m.inBattle = true
			m.battleView.SetSnapshot(msg.state)
			m.activeTab = tabBattle
			m.status = "battle recovered: " + msg.state.MonsterName
		}

	case battleStartedMsg:
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
		} else {
			m.inBattle = true
			m.battleView.SetSnapshot(msg.state)
			m.activeTab = tabBattle
			m.status = "battle started: " + msg.state.MonsterName
		}

	case battleEndedMsg:
		if msg.err != nil {
			m.status = "end failed: " + msg.err.Error()
		}
		// The resolved outcome also arrives as an engine event.

	case engineEventMsg:
		if !msg.ok {
			return m, nil
		}
		switch {
		case msg.event.State != nil:
			m.inBattle = true
			m.battleView.SetSnapshot(*msg.event.State)
		case msg.event.Outcome != nil:
			m.inBattle = false
			m.battleView.Clear()
			m.resultView.SetOutcome(*msg.event.Outcome)
			m.activeTab = tabResult
			m.status = "battle resolved: " + msg.event.Outcome.Result
			cmds = append(cmds, m.hubView.Refresh())
		}
		cmds = append(cmds, m.waitForEventCmd())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHub && m.hubView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case "enter":
			if m.activeTab == tabHub {
				// No override: the monster's HP sets the pace.
				cmds = append(cmds, m.startFromHub(0))
			}
		case "1":
			if m.activeTab == tabHub {
				cmds = append(cmds, m.startFromHub(15*60))
			}
		case "2":
			if m.activeTab == tabHub {
				cmds = append(cmds, m.startFromHub(25*60))
			}
		case "3":
			if m.activeTab == tabHub {
				cmds = append(cmds, m.startFromHub(50*60))
			}
		case "e":
			if m.inBattle {
				cmds = append(cmds, m.endEarlyCmd())
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabHub:
		m.hubView, tabCmd = m.hubView.Update(msg)
	case tabBattle:
		m.battleView, tabCmd = m.battleView.Update(msg)
	case tabResult:
		m.resultView, tabCmd = m.resultView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	if m.showHelp {
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	} else {
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabHub:
		return m.hubView.View()
	case tabBattle:
		return m.battleView.View()
	case tabResult:
		return m.resultView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "focusforge  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.inBattle {
		left = theme.Bad.Render("⚔ in battle") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.hubView, _ = m.hubView.Update(sz)
	m.battleView, _ = m.battleView.Update(sz)
	m.resultView, _ = m.resultView.Update(sz)
}

func (m Model) startFromHub(durationSeconds int) tea.Cmd {
	id, ok := m.hubView.SelectedMonsterID()
	if !ok {
		return nil
	}
	return m.startBattleCmd(id, durationSeconds)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) recoverCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.battle.Recover(context.Background()); err != nil {
			return recoveredMsg{err: err}
		}
		state, err := m.battle.GetState(context.Background())
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return recoveredMsg{}
		}
		if err != nil {
			return recoveredMsg{err: err}
		}
		return recoveredMsg{state: state, live: true}
	}
}

func (m Model) startBattleCmd(monsterID string, durationSeconds int) tea.Cmd {
	return func() tea.Msg {
		state, err := m.battle.StartSession(context.Background(), monsterID, durationSeconds)
		return battleStartedMsg{state: state, err: err}
	}
}

func (m Model) endEarlyCmd() tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.battle.EndSessionEarly(context.Background())
		if err != nil {
			return battleEndedMsg{err: fmt.Errorf("end battle: %w", err)}
		}
		return battleEndedMsg{outcome: outcome}
	}
}

func (m Model) waitForEventCmd() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		return engineEventMsg{event: event, ok: ok}
	}
}
