package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/ratmods/modman/pkg/manifest"
	"github.com/spf13/cobra"
)

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall [id]...",
		Short: "Uninstall mods",
		Long: `Deletes the files recorded for each mod and removes it from the index.

Without arguments a list of installed mods is offered for selection.`,
		RunE: runUninstall,
	}
	cmd.Flags().Bool("all", false, "Uninstall every mod without prompting")
	return cmd
}

func runUninstall(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	m := sess.Manifest()
	if len(m.Mods) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to uninstall")
		return nil
	}

	ids := args
	switch {
	case all:
		ids = modIDs(m)
	case len(ids) == 0:
		ids, err = promptMods(m)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected")
			return nil
		}
	}

	// Resolve every id before removing anything.
	for _, id := range ids {
		if _, ok := m.Get(id); !ok {
			return fmt.Errorf("no installed mod with id %q", id)
		}
	}

	out := &statusPrinter{w: cmd.OutOrStdout(), sess: sess}
	for _, id := range ids {
		res, ok := sess.Uninstall(m.Index(id))
		out.flush()
		if !ok {
			continue
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
		}
	}
	return nil
}

func modIDs(m *manifest.Manifest) []string {
	ids := make([]string, len(m.Mods))
	for i, e := range m.Mods {
		ids[i] = e.ID
	}
	return ids
}

// promptMods uses huh to present a multi-select of installed mods.
func promptMods(m *manifest.Manifest) ([]string, error) {
	options := make([]huh.Option[string], len(m.Mods))
	for i, e := range m.Mods {
		label := e.DisplayName()
		if e.Version != "" {
			label += " " + e.Version
		}
		options[i] = huh.NewOption(label, e.ID)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select mods to uninstall").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("selection prompt failed: %w", err)
	}
	return selected, nil
}
