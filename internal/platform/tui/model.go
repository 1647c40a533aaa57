// Package tui provides the Bubble Tea host for a merge session: the board
// screen, the history browser and the SSH server that serves them.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/quantum2048/internal/games/merge"
	"github.com/vovakirdan/quantum2048/internal/storage"
)

// Recorder stores finished games.
type Recorder interface {
	SaveGame(rec storage.GameRecord) (string, error)
}

// gameRecordedMsg reports the result of saving a finished game.
type gameRecordedMsg struct {
	id  string
	err error
}

// notices collects session callbacks fired during a command. It is shared by
// pointer because Bubble Tea copies the model on every update.
type notices struct {
	tierUp   string
	gameOver bool
}

// Model is the Bubble Tea model for the board screen.
type Model struct {
	session *merge.Session
	state   merge.State
	events  *notices
	history Recorder
	player  string
	logger  *log.Logger

	keys   GameKeyMap
	help   help.Model
	width  int
	height int
	banner string

	quitting bool
}

// NewModel wires a model to session. history may be nil; player is recorded
// with every finished game.
func NewModel(session *merge.Session, history Recorder, player string, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ev := &notices{}
	session.OnTierUp(func(_ int, name string) { ev.tierUp = name })
	session.OnGameOver(func(int) { ev.gameOver = true })

	return Model{
		session: session,
		state:   session.State(),
		events:  ev,
		history: history,
		player:  player,
		logger:  logger,
		keys:    DefaultGameKeyMap(),
		help:    help.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case gameRecordedMsg:
		if msg.err != nil {
			m.logger.Warn("could not record game", "error", msg.err)
		} else {
			m.logger.Debug("game recorded", "id", msg.id, "player", m.player)
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NewGame):
		m.state = m.session.NewGame()
		m.banner = ""
		cmd := m.drain()
		return m, cmd

	case key.Matches(msg, m.keys.Undo):
		st, ok := m.session.Undo()
		m.state = st
		m.banner = ""
		if !ok {
			m.banner = "Nothing to undo"
		}
		cmd := m.drain()
		return m, cmd
	}

	dir, ok := m.keys.Direction(msg)
	if !ok {
		return m, nil
	}
	st, err := m.session.Move(dir)
	if err != nil {
		m.logger.Error("move rejected", "direction", dir, "error", err)
		return m, nil
	}
	m.state = st
	m.banner = ""
	cmd := m.drain()
	return m, cmd
}

// drain turns the callbacks fired by the last command into banner text and
// commands.
func (m *Model) drain() tea.Cmd {
	ev := *m.events
	*m.events = notices{}

	if ev.tierUp != "" {
		m.banner = fmt.Sprintf("Entered the %s theme!", ev.tierUp)
	}
	if ev.gameOver {
		return m.recordCmd(m.state)
	}
	return nil
}

func (m Model) recordCmd(st merge.State) tea.Cmd {
	if m.history == nil {
		return nil
	}
	rec := storage.GameRecord{
		Player:  m.player,
		Score:   st.Score,
		MaxTile: st.MaxTile,
		Tier:    st.Tier,
		Moves:   st.Moves,
		Coins:   st.Coins,
	}
	history := m.history
	return func() tea.Msg {
		id, err := history.SaveGame(rec)
		return gameRecordedMsg{id: id, err: err}
	}
}

// State returns the last session state shown.
func (m Model) State() merge.State {
	return m.state
}

// View renders the board screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	theme := themeFor(m.state.Tier)
	accent := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		accent.Render("QUANTUM 2048"),
		"   ",
		accent.Reverse(true).Padding(0, 1).Render("THEME "+strings.ToUpper(m.state.TierName)),
	)

	stats := []string{
		fmt.Sprintf("Score %d", m.state.Score),
		lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(fmt.Sprintf("Best %d", m.state.BestScore)),
		fmt.Sprintf("Coins %s", m.state.Coins.StringFixed(1)),
	}
	if m.state.Combo > 2 {
		stats = append(stats, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")).
			Render(fmt.Sprintf("COMBO x%d", m.state.Combo)))
	}

	keys := m.keys
	board := renderBoard(m.state.Grid, theme)
	if m.state.GameOver {
		board = m.renderGameOver(board, theme)
		keys.Undo.SetEnabled(false)
	}

	status := dim.Render(fmt.Sprintf("Moves %d  Max %d", m.state.Moves, m.state.MaxTile))
	if m.banner != "" {
		status = accent.Render(m.banner)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		strings.Join(stats, "   "),
		"",
		board,
		status,
		"",
		dim.Render(m.help.View(keys)),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}

// renderBoard draws the grid inside a border in the theme accent.
func renderBoard(g merge.Grid, theme Theme) string {
	rows := make([]string, merge.Size)
	for r := range merge.Size {
		cells := make([]string, merge.Size)
		for c := range merge.Size {
			v := g[r][c]
			cells[c] = tileStyle(v, theme).Render(tileLabel(v))
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderGameOver replaces the board with the final result, keeping its size.
func (m Model) renderGameOver(board string, theme Theme) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Render("GAME OVER"),
		"",
		fmt.Sprintf("Final score %d", m.state.Score),
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("Max tile %d", m.state.MaxTile)),
	}
	if m.state.MaxTile >= 2048 {
		lines = append(lines, fmt.Sprintf("You reached the %s theme", m.state.TierName))
	}
	lines = append(lines, "", "n: try again")

	box := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Render(lipgloss.Place(
			lipgloss.Width(board)-2, lipgloss.Height(board)-2,
			lipgloss.Center, lipgloss.Center,
			box,
		))
}

// Run starts the Bubble Tea program for session on the local terminal.
func Run(session *merge.Session, history Recorder, player string, logger *log.Logger) error {
	model := NewModel(session, history, player, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
