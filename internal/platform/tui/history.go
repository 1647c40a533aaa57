package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/quantum2048/internal/progression"
	"github.com/vovakirdan/quantum2048/internal/storage"
)

// maxHistory is the number of games loaded per view.
const maxHistory = 100

// HistorySource lists recorded games.
type HistorySource interface {
	TopGames(limit int) ([]storage.GameRecord, error)
	AllGames() ([]storage.GameRecord, error)
}

// historyView selects the ordering shown in the table.
type historyView int

const (
	viewTop historyView = iota
	viewRecent
)

func (v historyView) title() string {
	if v == viewRecent {
		return "RECENT GAMES"
	}
	return "TOP GAMES"
}

// HistoryKeyMap defines the key bindings for the history browser.
type HistoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Switch, k.Quit}}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("left", "right", "h", "l"),
			key.WithHelp("←/→", "top/recent"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing past games.
type HistoryModel struct {
	source   HistorySource
	names    []string
	view     historyView
	games    []storage.GameRecord
	loadErr  error
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history browser. names are the tier theme names.
func NewHistoryModel(source HistorySource, names []string, width, height int) HistoryModel {
	m := HistoryModel{
		source: source,
		names:  names,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 9},
		{Title: "Max", Width: 8},
		{Title: "Theme", Width: 9},
		{Title: "Moves", Width: 6},
		{Title: "Coins", Width: 7},
		{Title: "Player", Width: 10},
		{Title: "Date", Width: 12},
	}

	height := m.height - 8
	if height < 5 {
		height = 10
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load reads the games for the current view.
func (m *HistoryModel) load() {
	m.games, m.loadErr = nil, nil
	if m.source != nil {
		if m.view == viewRecent {
			m.games, m.loadErr = m.source.AllGames()
			if len(m.games) > maxHistory {
				m.games = m.games[:maxHistory]
			}
		} else {
			m.games, m.loadErr = m.source.TopGames(maxHistory)
		}
	}
	m.table.SetRows(historyRows(m.games, m.names))
	m.table.GotoTop()
}

func historyRows(games []storage.GameRecord, names []string) []table.Row {
	rows := make([]table.Row, len(games))
	for i, g := range games {
		player := g.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.MaxTile),
			progression.Name(g.Tier, names),
			fmt.Sprintf("%d", g.Moves),
			g.Coins.StringFixed(1),
			player,
			g.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Switch):
			m.view = 1 - m.view
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.table.SetRows(historyRows(m.games, m.names))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render(m.view.title()))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		b.WriteString(boxStyle.Render(emptyStyle.Render("Could not load history:\n" + m.loadErr.Error())))
	case len(m.games) == 0:
		b.WriteString(boxStyle.Render(emptyStyle.Render("No games recorded yet.\nFinish a game to see it here!")))
	default:
		b.WriteString(boxStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, b.String())
	}
	return b.String()
}

// RunHistory runs the history browser.
func RunHistory(source HistorySource, names []string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(source, names, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
