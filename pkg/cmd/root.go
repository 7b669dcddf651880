package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ratmods/modman/pkg/config"
	"github.com/ratmods/modman/pkg/logging"
	"github.com/ratmods/modman/pkg/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagGameDir  string
	flagLogLevel string
	flagLogJSON  bool

	// Cfg holds the resolved settings, available to all subcommands after
	// PersistentPreRunE completes.
	Cfg *config.Settings
	// Log is the logger built from Cfg.
	Log = zerolog.Nop()
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modman",
		Short: "BepInEx and mod manager",
		Long:  "modman installs the BepInEx plugin loader into a game directory and tracks the mods installed on top of it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides := config.Overrides{GameDir: flagGameDir, LogLevel: flagLogLevel}
			if cmd.Flags().Changed("log-json") {
				overrides.LogJSON = &flagLogJSON
			}
			cfg, err := config.LoadSettings(overrides)
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagGameDir, "game-dir", "", "game installation directory")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(newInitCmd())
	root.AddCommand(newRuntimeCmd())
	root.AddCommand(newInstallCmd())
	root.AddCommand(newUninstallCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newVerifyCmd())

	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// openSession opens a session on the configured game directory.
func openSession(cmd *cobra.Command) (*session.Session, error) {
	if Cfg.GameDir == "" {
		return nil, fmt.Errorf("no game directory configured; run `modman init` or pass --game-dir")
	}
	info, err := os.Stat(Cfg.GameDir)
	if err != nil {
		return nil, fmt.Errorf("game directory %s: %w", Cfg.GameDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("game directory %s is not a directory", Cfg.GameDir)
	}

	poll, err := Cfg.Poll()
	if err != nil {
		return nil, err
	}
	return session.New(cmd.Context(), session.Options{
		GameDir:      Cfg.GameDir,
		PollInterval: poll,
		Log:          Log,
	}), nil
}

// statusPrinter echoes session status lines that have not been shown yet.
type statusPrinter struct {
	w    io.Writer
	sess *session.Session
	seen int
}

func (p *statusPrinter) flush() {
	lines := p.sess.Status()
	for _, line := range lines[p.seen:] {
		fmt.Fprintln(p.w, line)
	}
	p.seen = len(lines)
}
