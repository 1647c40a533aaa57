package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/quantum2048/internal/config"
	"github.com/vovakirdan/quantum2048/internal/games/merge"
	"github.com/vovakirdan/quantum2048/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play on this terminal",
	Long: `Start a game on this terminal.

Controls:
  Arrows/WASD/HJKL  - Move
  U                 - Undo the last move
  N                 - New game
  ?                 - More keys
  Q/Esc/Ctrl+C      - Quit

Finished games are recorded to the history. Logs go to the file set by
log.file in the config, so they never disturb the board.

Examples:
  quantum2048 play
  quantum2048 play --seed 42
  quantum2048 play --config ./my-quantum2048.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		exitf("play needs an interactive terminal")
	}

	cfg := loadConfig()
	logger, closeLog := fileLogger(cfg)

	err := playGame(cfg, flagSeed, logger, func(s *merge.Session, history tui.Recorder) error {
		return tui.Run(s, history, "", logger)
	})
	if err != nil {
		logger.Error("game ended with error", "error", err)
		closeLog()
		exitf("%v", err)
	}
	closeLog()
}

// playGame opens the stores, runs ui on a new session and closes the stores
// again, flushing any pending best score, before it returns.
func playGame(cfg config.Config, seed int64, logger *log.Logger, ui func(*merge.Session, tui.Recorder) error) error {
	b, err := openBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer b.Close()

	best := b.openBest("")
	defer best.Close()

	opts, err := b.sessionOptions(logger)
	if err != nil {
		return err
	}
	session := merge.NewSession(best, append(opts, merge.WithSeed(seed))...)

	logger.Info("game started", "backend", cfg.Persistence.Backend, "policy", cfg.Progression.Policy, "seed", seed)
	return ui(session, b.history)
}
