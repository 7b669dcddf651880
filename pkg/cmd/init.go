package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/ratmods/modman/pkg/config"
	"github.com/ratmods/modman/pkg/loader"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [game-dir]",
		Short: "Configure the game directory",
		Long:  "Writes the game directory to modman.toml in the working directory, or to ~/.modman/config.toml with --global.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
		// init writes settings rather than reading them; skip the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	cmd.Flags().Bool("global", false, "write ~/.modman/config.toml instead of ./modman.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}

	dir := flagGameDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		dir, err = promptGameDir()
		if err != nil {
			return err
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("game directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("game directory %s is not a directory", dir)
	}

	s := &config.Settings{GameDir: dir}
	if global {
		if err := config.WriteGlobalSettings(s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Updated ~/.modman/config.toml")
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		if err := config.WriteLocalSettings(wd, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.LocalConfigFile)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "BepInEx: %s\n", loader.Status(dir))
	return nil
}

// promptGameDir asks for the game directory, offering the built-in default.
func promptGameDir() (string, error) {
	defaults, err := config.Defaults()
	if err != nil {
		return "", err
	}

	var dir string
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Game directory").
				Placeholder(defaults.GameDir).
				Value(&dir),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("game directory prompt failed: %w", err)
	}

	if dir == "" {
		dir = defaults.GameDir
	}
	return dir, nil
}
