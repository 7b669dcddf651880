package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/loader"
	"github.com/ratmods/modman/pkg/session"
	"github.com/ratmods/modman/pkg/source"
	"github.com/ratmods/modman/pkg/store"
	"github.com/spf13/cobra"
)

func newRuntimeCmd() *cobra.Command {
	runtimeCmd := &cobra.Command{
		Use:   "runtime",
		Short: "Manage the BepInEx plugin loader",
	}

	installCmd := &cobra.Command{
		Use:   "install [zip-or-url]",
		Short: "Install BepInEx",
		Long: `Downloads and installs BepInEx into the game directory, then validates it.

Without an argument the configured runtime_url is downloaded.
An http:// or https:// argument is downloaded instead.
Anything else is read as a local zip file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRuntimeInstall,
	}
	installCmd.Flags().BoolP("yes", "y", false, "reinstall without asking when BepInEx is already present")
	installCmd.Flags().Bool("no-wait", false, "return as soon as the install is validated instead of waiting for readiness")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether BepInEx is installed",
		Args:  cobra.NoArgs,
		RunE:  runRuntimeStatus,
	}

	runtimeCmd.AddCommand(installCmd)
	runtimeCmd.AddCommand(statusCmd)
	return runtimeCmd
}

func runRuntimeInstall(cmd *cobra.Command, args []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	noWait, err := cmd.Flags().GetBool("no-wait")
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if loader.IsInstalled(sess.Root()) && !yes {
		ok, err := confirmReinstall()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do")
			return nil
		}
	}

	ref := Cfg.RuntimeURL
	if len(args) == 1 {
		ref = args[0]
	}
	src, err := source.ParseRef(ref, Cfg.UserAgent)
	if err != nil {
		return err
	}

	if _, err := sess.StartRuntimeInstall(src); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installing BepInEx from %s\n", ref)

	return waitRuntime(cmd, sess, !noWait)
}

// waitRuntime drives the session until the install task has finished and,
// when wait is set, until the poller has seen the runtime.
func waitRuntime(cmd *cobra.Command, sess *session.Session, wait bool) error {
	ctx := cmd.Context()
	out := &statusPrinter{w: cmd.OutOrStdout(), sess: sess}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sess.TaskDone():
	}
	res, _ := sess.Tick()
	out.flush()
	if res.Err != nil {
		return fmt.Errorf("runtime install failed: %w", res.Err)
	}

	if !wait || !sess.Polling() {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sess.PollerDone():
	}
	sess.Tick()
	out.flush()
	return nil
}

func confirmReinstall() (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("BepInEx is already installed. Reinstall it?").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

func runRuntimeStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status: %s\n", sess.RuntimeStatus())

	st := store.New(sess.Root())
	for _, marker := range []string{layout.CoreLibrary, layout.CoreLibraryAlt, layout.CompanionFile} {
		state := "missing"
		if ok, _ := st.Exists(marker); ok {
			state = "present"
		}
		fmt.Fprintf(out, "  %-28s %s\n", marker, state)
	}

	if err := loader.Validate(sess.Root()); err != nil {
		fmt.Fprintf(out, "Validation: %v\n", err)
	} else {
		fmt.Fprintln(out, "Validation: ok")
	}
	return nil
}
