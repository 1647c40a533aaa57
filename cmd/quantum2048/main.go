// quantum2048 is an endless 2048 in the terminal, with themes that change as
// the highest tile grows.
//
// Usage:
//
//	quantum2048 play           - Play on this terminal
//	quantum2048 serve          - Start SSH server for remote play
//	quantum2048 scores         - Show the best games and the best score
//	quantum2048 history        - Browse past games
//	quantum2048 tiers          - Show progression policies and theme boundaries
//	quantum2048 best           - Show or reset the stored best score
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible games
//	--db <path>          - Set database path (default from config)
//	--config <path>      - Use a specific config file
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quantum2048",
	Short: "Quantum 2048 - endless 2048 in your terminal",
	Long: `Quantum 2048 is an endless take on 2048. There is no winning tile:
keep merging, and the board theme changes as your highest tile grows.

Available commands:
  play     - Play on this terminal
  serve    - Start SSH server for remote play
  scores   - Show the best recorded games
  history  - Browse past games
  tiers    - Show progression policies and theme boundaries
  best     - Show or reset the stored best score

Environment:
  QUANTUM2048_DB, QUANTUM2048_BACKEND and QUANTUM2048_LOG_LEVEL override the
  config file. A .env file in the working directory is loaded first.

Examples:
  quantum2048 play
  quantum2048 play --seed 42
  quantum2048 serve --ssh :2222
  quantum2048 scores --limit 20`,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(bestCmd)
}

// exitf prints an error and exits.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
