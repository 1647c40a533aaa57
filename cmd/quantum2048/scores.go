package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/quantum2048/internal/platform/tui"
	"github.com/vovakirdan/quantum2048/internal/progression"
	"github.com/vovakirdan/quantum2048/internal/storage"
)

var (
	flagLimit  int
	flagPlayer string
	flagClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best recorded games",
	Long: `Display the top games from the history and the stored best score.

Examples:
  quantum2048 scores
  quantum2048 scores --limit 20
  quantum2048 scores --player alice
  quantum2048 scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past games",
	Long: `Open an interactive table of recorded games.

Left/Right switches between the best and the most recent games.`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of games to show")
	scoresCmd.Flags().StringVar(&flagPlayer, "player", "", "Only show games of this SSH user")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded games")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	b, err := openBackend(cfg, log.New(io.Discard))
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer b.Close()

	if flagClear {
		if err := b.history.ClearGames(); err != nil {
			exitf("clearing games: %v", err)
		}
		fmt.Println("Game history cleared")
		return
	}

	var games []storage.GameRecord
	if flagPlayer != "" {
		games, err = b.history.PlayerGames(flagPlayer, flagLimit)
	} else {
		games, err = b.history.TopGames(flagLimit)
	}
	if err != nil {
		exitf("retrieving games: %v", err)
	}

	fmt.Println("High Scores - Quantum 2048")
	fmt.Println()

	if len(games) == 0 {
		fmt.Println("No games recorded yet.")
		fmt.Println()
		fmt.Println("Play 'quantum2048 play' to set the first high score!")
	} else {
		fmt.Printf("  %-4s  %-10s  %-8s  %-9s  %-6s  %-7s  %s\n", "Rank", "Score", "Max", "Theme", "Moves", "Coins", "Date")
		fmt.Printf("  %-4s  %-10s  %-8s  %-9s  %-6s  %-7s  %s\n", "----", "-----", "---", "-----", "-----", "-----", "----")
		for i, g := range games {
			fmt.Printf("  %-4d  %-10d  %-8d  %-9s  %-6d  %-7s  %s\n",
				i+1, g.Score, g.MaxTile,
				progression.Name(g.Tier, cfg.Progression.Names),
				g.Moves, g.Coins.StringFixed(1),
				g.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
	}

	fmt.Println()
	if top, err := b.history.HighScore(); err == nil && top > 0 {
		fmt.Printf("Top recorded game: %d\n", top)
	}
	if best, err := b.syncBest(flagPlayer).Get(); err == nil {
		fmt.Printf("Best: %d\n", best)
	} else {
		fmt.Fprintf(os.Stderr, "Could not read best score: %v\n", err)
	}
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	b, err := openBackend(cfg, log.New(io.Discard))
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer b.Close()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	if err := tui.RunHistory(b.history, cfg.Progression.Names, width, height); err != nil {
		exitf("%v", err)
	}
}
