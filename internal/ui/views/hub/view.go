package hub

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	bestiarydto "focusforge/internal/modules/bestiary/dto"
	progressdto "focusforge/internal/modules/progress/dto"
	"focusforge/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type BestiaryPort interface {
	ListMonsters(ctx context.Context) ([]bestiarydto.MonsterOutput, error)
}

type ProgressPort interface {
	Overview(ctx context.Context) (progressdto.StatsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type MonstersLoadedMsg struct {
	Monsters []bestiarydto.MonsterOutput
	Err      error
}

type OverviewLoadedMsg struct {
	Overview progressdto.StatsOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type monsterItem struct {
	monster bestiarydto.MonsterOutput
}

func (i monsterItem) Title() string {
	return fmt.Sprintf("%s %s", i.monster.Icon, i.monster.Name)
}

func (i monsterItem) Description() string {
	feeds := "tab hopping"
	if len(i.monster.TriggerSites) > 0 {
		feeds = strings.Join(i.monster.TriggerSites, ", ")
	}
	return fmt.Sprintf("%d HP — feeds on %s", i.monster.HP, feeds)
}

func (i monsterItem) FilterValue() string { return i.monster.Name }

// ─── warrior names ───────────────────────────────────────────────────────────

var (
	warriorAdjectives = []string{"Relentless", "Unblinking", "Caffeinated", "Stalwart", "Grim", "Dauntless"}
	warriorNouns      = []string{"Taskmaster", "Deepworker", "Monofocus", "Tabslayer", "Deadliner", "Flowsmith"}
)

func warriorName(rng *rand.Rand) string {
	return warriorAdjectives[rng.Intn(len(warriorAdjectives))] + " " + warriorNouns[rng.Intn(len(warriorNouns))]
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	bestiary BestiaryPort
	progress ProgressPort

	list     list.Model
	overview progressdto.StatsOutput
	hasStats bool
	warrior  string
	spinner  spinner.Model
	loading  bool
	width    int
	height   int
}

func New(bestiary BestiaryPort, progress ProgressPort, rng *rand.Rand) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Bestiary"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		bestiary: bestiary,
		progress: progress,
		list:     l,
		warrior:  warriorName(rng),
		spinner:  sp,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMonstersCmd(), m.loadOverviewCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case MonstersLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Bestiary — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Monsters))
		for i, monster := range msg.Monsters {
			items[i] = monsterItem{monster: monster}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case OverviewLoadedMsg:
		if msg.Err == nil {
			m.overview = msg.Overview
			m.hasStats = true
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Summoning monsters…")
	}

	listW := m.width * 5 / 10
	statsW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	statsPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Padding(1).
		Width(statsW - 2).
		Height(m.height - 2).
		Render(m.renderStats())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, statsPane)
}

// SelectedMonsterID returns the current selection's monster ID, if any.
func (m Model) SelectedMonsterID() (string, bool) {
	if item, ok := m.list.SelectedItem().(monsterItem); ok {
		return item.monster.ID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Refresh reloads the stats pane, called after a battle resolves.
func (m Model) Refresh() tea.Cmd {
	return m.loadOverviewCmd()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 5 / 10
	m.list.SetSize(listW, m.height)
}

func (m Model) renderStats() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(m.warrior) + "\n\n")
	if !m.hasStats {
		sb.WriteString(theme.Muted.Render("No battles fought yet."))
		return sb.String()
	}
	o := m.overview
	sb.WriteString(theme.Hot.Render(fmt.Sprintf("Lv %d  %s", o.Level, o.Title)) + "\n")
	sb.WriteString(theme.Muted.Render("xp:        ") + fmt.Sprintf("%d (%d/%d into level)", o.CurrentXP, o.XPIntoLevel, o.XPForNextLevel) + "\n")
	sb.WriteString(theme.Muted.Render("pomodoros: ") + fmt.Sprintf("%d", o.TotalPomodoros) + "\n")
	sb.WriteString(theme.Muted.Render("streak:    ") + fmt.Sprintf("%d day(s)", o.CurrentStreak) + "\n")
	if o.MostDefeated != "" {
		sb.WriteString(theme.Muted.Render("nemesis:   ") + fmt.Sprintf("%s (x%d)", o.MostDefeated, o.MonstersDefeated[o.MostDefeated]) + "\n")
	}
	if len(o.History) > 0 {
		sb.WriteString("\n" + theme.Muted.Render("recent: "))
		for _, h := range o.History {
			if h.Success {
				sb.WriteString(theme.Good.Render("▣ "))
			} else {
				sb.WriteString(theme.Bad.Render("▢ "))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: fight at the monster's pace  1/2/3: 15/25/50m"))
	return sb.String()
}

func (m Model) loadMonstersCmd() tea.Cmd {
	return func() tea.Msg {
		monsters, err := m.bestiary.ListMonsters(context.Background())
		return MonstersLoadedMsg{Monsters: monsters, Err: err}
	}
}

func (m Model) loadOverviewCmd() tea.Cmd {
	return func() tea.Msg {
		overview, err := m.progress.Overview(context.Background())
		return OverviewLoadedMsg{Overview: overview, Err: err}
	}
}
