package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

//go:embed defaults/quantum2048.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Board: BoardConfig{
			Spawn4Probability: 0.1,
		},
		Progression: ProgressionConfig{
			Policy:     progression.PolicyTable,
			BandWidth:  progression.DefaultBandWidth,
			Thresholds: append([]int(nil), progression.DefaultThresholds...),
			Names:      append([]string(nil), progression.DefaultNames...),
		},
		Persistence: PersistenceConfig{
			Backend:        BackendSQLite,
			Key:            "2048_best_score",
			DBPath:         "~/.quantum2048/scores.db",
			KeyringService: "quantum2048",
		},
		Rewards: RewardsConfig{
			PointsPerStep: 100,
			CoinsPerStep:  "0.5",
		},
		Server: ServerConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.quantum2048/quantum2048.log",
		},
	}
}
