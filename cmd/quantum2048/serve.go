package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/quantum2048/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Quantum 2048 SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own game. Best scores are kept per SSH user;
the game history is shared, and Tab on the board opens it.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses server.host_key_path from the config
  - Otherwise, auto-generates a key at ~/.quantum2048/host_key

Examples:
  quantum2048 serve                           # Listen on the configured address
  quantum2048 serve --ssh :2222               # Listen on port 2222
  quantum2048 serve --host-key ./my_host_key  # Use specific host key
  quantum2048 serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := newLogger(os.Stderr, cfg, "quantum2048-ssh")

	b, err := openBackend(cfg, logger)
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	defer b.Close()

	sshCfg := tui.DefaultSSHServerConfig()
	if cfg.Server.Address != "" {
		sshCfg.Address = cfg.Server.Address
	}
	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	sshCfg.HostKeyPath = cfg.Server.HostKeyPath
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}
	if cfg.Server.IdleTimeout > 0 {
		sshCfg.IdleTimeout = cfg.Server.IdleTimeout
	}
	if flagIdleTimeout > 0 {
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}
	sshCfg.History = b.history
	sshCfg.OpenBest = func(player string) tui.BestStore { return b.openBest(player) }
	opts, err := b.sessionOptions(nil)
	if err != nil {
		b.Close()
		exitf("%v", err)
	}
	sshCfg.Options = opts
	sshCfg.Names = cfg.Progression.Names
	sshCfg.Logger = logger

	server, err := tui.NewSSHServer(sshCfg)
	if err != nil {
		b.Close()
		exitf("creating server: %v", err)
	}

	fmt.Printf("Starting Quantum 2048 SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		b.Close()
		exitf("server: %v", err)
	}
}
