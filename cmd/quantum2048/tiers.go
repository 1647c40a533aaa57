package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show progression policies and theme boundaries",
	Long: `List the registered progression policies and, for each, the smallest
tile that reaches every theme. The active policy is marked with *.

Examples:
  quantum2048 tiers
  quantum2048 tiers --config ./formula.yaml`,
	Args: cobra.NoArgs,
	Run:  runTiers,
}

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Show or reset the stored best score",
	Long: `Print the best score from the configured backend.

Examples:
  quantum2048 best
  quantum2048 best --reset
  QUANTUM2048_BACKEND=keyring quantum2048 best`,
	Args: cobra.NoArgs,
	Run:  runBest,
}

var flagReset bool

func init() {
	bestCmd.Flags().BoolVar(&flagReset, "reset", false, "Delete the stored best score")
}

func runTiers(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	settings := progression.Settings{
		BandWidth:  cfg.Progression.BandWidth,
		Thresholds: cfg.Progression.Thresholds,
	}
	names := cfg.Progression.Names

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, policy := range progression.List() {
		c, err := progression.Create(policy, settings)
		if err != nil {
			fmt.Fprintf(w, "  %s\t(%v)\n", policy, err)
			continue
		}

		marker := " "
		if policy == cfg.Progression.Policy {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, policy)
		for tier := range len(names) + 1 {
			floor := c.Floor(tier)
			if floor < 0 {
				break
			}
			fmt.Fprintf(w, "    %d\t%s\tfrom tile %d\n", tier, progression.Name(tier, names), floor)
		}
	}
	w.Flush()
}

func runBest(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	b, err := openBackend(cfg, log.New(io.Discard))
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer b.Close()

	store := b.syncBest("")
	if flagReset {
		if err := store.Reset(); err != nil {
			exitf("resetting best score: %v", err)
		}
		fmt.Printf("Best score reset (%s backend)\n", cfg.Persistence.Backend)
		return
	}

	best, err := store.Get()
	if err != nil {
		exitf("reading best score: %v", err)
	}
	fmt.Printf("Best: %d (%s backend)\n", best, cfg.Persistence.Backend)
}
