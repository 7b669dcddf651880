package cmd

import (
	"errors"
	"fmt"

	"github.com/ratmods/modman/pkg/session"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <file.zip|file.dll>...",
		Short: "Install mods",
		Long: `Installs mod archives or loose plugin libraries into the game directory.

Archive entries under plugins/ or BepInEx/ are placed accordingly. An archive
with neither has its .dll files copied into BepInEx/plugins. Installing an
archive with the same file name again replaces the earlier entry.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstall,
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := &statusPrinter{w: cmd.OutOrStdout(), sess: sess}
	results, err := sess.Drop(args)
	out.flush()
	if err != nil {
		if errors.Is(err, session.ErrRuntimeMissing) {
			return fmt.Errorf("runtime not installed; run `modman runtime install` first")
		}
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		e := r.Result.Entry
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%d file(s))\n", e.DisplayName(), e.Version, len(e.InstalledFiles))
		for _, w := range r.Result.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to install", failed, len(results))
	}
	return nil
}
