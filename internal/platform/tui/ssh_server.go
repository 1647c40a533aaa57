package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/quantum2048/internal/games/merge"
	"github.com/vovakirdan/quantum2048/internal/storage"
)

// BestStore is a per-player best-score store owned by one SSH session.
// It is closed when the session ends.
type BestStore interface {
	merge.BestScoreStore
	Close() error
}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.quantum2048/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// History records finished games of every player. May be nil.
	History *storage.Store

	// OpenBest returns the best-score store for a player. May be nil, in
	// which case best scores live only as long as the connection.
	OpenBest func(player string) BestStore

	// Options are applied to every new session.
	Options []merge.Option

	// Names are the tier theme names shown in the history browser.
	Names []string

	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves one isolated game session per SSH connection.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "quantum2048-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".quantum2048", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a session and its Bubble Tea program for each connection.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	player := sshSession.User()
	logger := s.logger.With("user", player)

	var best merge.BestScoreStore
	if s.config.OpenBest != nil {
		store := s.config.OpenBest(player)
		best = store
		go func() {
			<-sshSession.Context().Done()
			if err := store.Close(); err != nil {
				logger.Warn("could not close best score store", "error", err)
			}
		}()
	}

	opts := append([]merge.Option{merge.WithLogger(logger)}, s.config.Options...)
	game := merge.NewSession(best, opts...)

	var (
		recorder Recorder
		source   HistorySource
	)
	if s.config.History != nil {
		recorder = s.config.History
		source = s.config.History
	}

	model := NewSessionModel(game, recorder, source, s.config.Names, player, logger)
	model.board.width = pty.Window.Width
	model.board.height = pty.Window.Height

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// historyKey toggles between the board and the history browser.
var historyKey = key.NewBinding(
	key.WithKeys("tab"),
	key.WithHelp("tab", "history"),
)

// SessionModel is the top-level model of an SSH connection: the board, with
// the shared history one key away.
type SessionModel struct {
	board       Model
	history     HistoryModel
	source      HistorySource
	names       []string
	showHistory bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(game *merge.Session, recorder Recorder, source HistorySource, names []string, player string, logger *log.Logger) SessionModel {
	return SessionModel{
		board:  NewModel(game, recorder, player, logger),
		source: source,
		names:  names,
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.board.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		board, _ := m.board.Update(wsm)
		m.board = board.(Model)
		if m.showHistory {
			history, _ := m.history.Update(wsm)
			m.history = history.(HistoryModel)
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		if m.showHistory {
			return m.updateHistory(km)
		}
		if key.Matches(km, historyKey) && m.source != nil {
			m.history = NewHistoryModel(m.source, m.names, m.board.width, m.board.height)
			m.showHistory = true
			return m, nil
		}
	}

	board, cmd := m.board.Update(msg)
	m.board = board.(Model)
	return m, cmd
}

// updateHistory routes keys to the history browser; its quit keys return
// to the board instead of closing the connection.
func (m SessionModel) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if key.Matches(msg, m.history.keys.Quit) || key.Matches(msg, historyKey) {
		m.showHistory = false
		return m, nil
	}
	history, cmd := m.history.Update(msg)
	m.history = history.(HistoryModel)
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.showHistory {
		return m.history.View()
	}
	return m.board.View()
}
