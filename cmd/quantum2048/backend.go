package main

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/quantum2048/internal/config"
	"github.com/vovakirdan/quantum2048/internal/games/merge"
	"github.com/vovakirdan/quantum2048/internal/storage"
)

// loadConfig reads the config and applies command-line overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		exitf("%v", err)
	}
	if flagDBPath != "" {
		cfg.Persistence.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		exitf("%v", err)
	}
	return cfg
}

// newLogger builds a logger in the style used across the commands.
func newLogger(w io.Writer, cfg config.Config, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           cfg.LogLevel(),
	})
}

// fileLogger logs to the configured file so output does not disturb the
// full-screen UI. Falls back to discarding logs.
func fileLogger(cfg config.Config) (*log.Logger, func()) {
	path, err := storage.ExpandHome(cfg.Log.File)
	if err != nil || path == "" {
		return log.New(io.Discard), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	return newLogger(f, cfg, "quantum2048"), func() { f.Close() }
}

// resettableBest is a synchronous best-score store that can be cleared.
type resettableBest interface {
	storage.BestStore
	Reset() error
}

// backend owns the database and hands out best-score stores per player.
type backend struct {
	cfg     config.Config
	history *storage.Store
	logger  *log.Logger

	mu     sync.Mutex
	memory map[string]*storage.MemoryBest
}

func openBackend(cfg config.Config, logger *log.Logger) (*backend, error) {
	store, err := storage.Open(cfg.Persistence.DBPath)
	if err != nil {
		return nil, err
	}
	return &backend{
		cfg:     cfg,
		history: store,
		logger:  logger,
		memory:  make(map[string]*storage.MemoryBest),
	}, nil
}

// bestKey returns the storage key for player; "" is the local player.
func (b *backend) bestKey(player string) string {
	if player == "" {
		return b.cfg.Persistence.Key
	}
	return b.cfg.Persistence.Key + ":" + player
}

// syncBest returns the configured backend for player.
func (b *backend) syncBest(player string) resettableBest {
	key := b.bestKey(player)

	switch b.cfg.Persistence.Backend {
	case config.BackendKeyring:
		return storage.NewKeyring(b.cfg.Persistence.KeyringService, key)
	case config.BackendMemory:
		b.mu.Lock()
		defer b.mu.Unlock()
		m, ok := b.memory[key]
		if !ok {
			m = storage.NewMemory(0)
			b.memory[key] = m
		}
		return m
	default:
		return b.history.Best(key)
	}
}

// openBest returns a fire-and-forget store for player. Close it to flush.
func (b *backend) openBest(player string) *storage.Async {
	return storage.NewAsync(b.syncBest(player), b.logger)
}

// sessionOptions builds the options every session gets. A nil logger leaves
// the session logger to the caller.
func (b *backend) sessionOptions(logger *log.Logger) ([]merge.Option, error) {
	opts, err := b.cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = append(opts, merge.WithLogger(logger))
	}
	return opts, nil
}

func (b *backend) Close() error {
	return b.history.Close()
}
