// Package config provides YAML-based configuration loading for the game,
// its persistence backends and the SSH host.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Best-score persistence backends.
const (
	BackendSQLite  = "sqlite"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// Config contains all configuration for Quantum 2048.
type Config struct {
	Board       BoardConfig       `yaml:"board"`
	Progression ProgressionConfig `yaml:"progression"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Rewards     RewardsConfig     `yaml:"rewards"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// BoardConfig defines tile spawning.
type BoardConfig struct {
	Spawn4Probability float64 `yaml:"spawn4_probability"` // chance a new tile is a 4
}

// ProgressionConfig selects the tier policy.
type ProgressionConfig struct {
	Policy     string   `yaml:"policy"`     // "table" or "formula"
	BandWidth  int      `yaml:"band_width"` // formula only
	Thresholds []int    `yaml:"thresholds"` // table only
	Names      []string `yaml:"names"`
}

// PersistenceConfig defines where the best score and history live.
type PersistenceConfig struct {
	Backend        string `yaml:"backend"` // sqlite, keyring or memory
	Key            string `yaml:"key"`
	DBPath         string `yaml:"db_path"`
	KeyringService string `yaml:"keyring_service"`
}

// RewardsConfig defines the coin payout per move.
type RewardsConfig struct {
	PointsPerStep int    `yaml:"points_per_step"`
	CoinsPerStep  string `yaml:"coins_per_step"` // decimal string
}

// ServerConfig defines the SSH host.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // used by the interactive host
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if p := c.Board.Spawn4Probability; p < 0 || p > 1 {
		return fmt.Errorf("%w: board.spawn4_probability %v outside [0, 1]", ErrInvalid, p)
	}

	if !progression.Exists(c.Progression.Policy) {
		return fmt.Errorf("%w: progression.policy %q (have %v)", ErrInvalid, c.Progression.Policy, progression.List())
	}
	if _, err := c.Classifier(); err != nil {
		return fmt.Errorf("%w: progression: %v", ErrInvalid, err)
	}

	switch c.Persistence.Backend {
	case BackendSQLite, BackendKeyring, BackendMemory:
	default:
		return fmt.Errorf("%w: persistence.backend %q", ErrInvalid, c.Persistence.Backend)
	}
	if c.Persistence.Key == "" {
		return fmt.Errorf("%w: persistence.key is empty", ErrInvalid)
	}
	if c.Persistence.DBPath == "" {
		return fmt.Errorf("%w: persistence.db_path is empty", ErrInvalid)
	}
	if c.Persistence.Backend == BackendKeyring && c.Persistence.KeyringService == "" {
		return fmt.Errorf("%w: persistence.keyring_service is empty", ErrInvalid)
	}

	if c.Rewards.PointsPerStep <= 0 {
		return fmt.Errorf("%w: rewards.points_per_step must be positive", ErrInvalid)
	}
	coins, err := decimal.NewFromString(c.Rewards.CoinsPerStep)
	if err != nil {
		return fmt.Errorf("%w: rewards.coins_per_step %q: %v", ErrInvalid, c.Rewards.CoinsPerStep, err)
	}
	if coins.IsNegative() {
		return fmt.Errorf("%w: rewards.coins_per_step is negative", ErrInvalid)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// Classifier builds the configured progression policy.
func (c Config) Classifier() (progression.Classifier, error) {
	return progression.Create(c.Progression.Policy, progression.Settings{
		BandWidth:  c.Progression.BandWidth,
		Thresholds: c.Progression.Thresholds,
	})
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
