package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check installed mods against the files on disk",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	drifts, err := sess.Installer().Verify()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bad := 0
	for _, d := range drifts {
		name := d.Entry.DisplayName()
		switch {
		case len(d.Outside) > 0:
			bad++
			fmt.Fprintf(out, "%s: %d recorded path(s) outside the game directory\n", name, len(d.Outside))
			for _, rel := range d.Outside {
				fmt.Fprintf(out, "  %s\n", rel)
			}
		case len(d.Missing) > 0:
			bad++
			fmt.Fprintf(out, "%s: %d file(s) missing\n", name, len(d.Missing))
			for _, rel := range d.Missing {
				fmt.Fprintf(out, "  %s\n", rel)
			}
		case d.Modified:
			bad++
			fmt.Fprintf(out, "%s: modified\n", name)
		case d.Unchecked:
			fmt.Fprintf(out, "%s: ok (no integrity recorded)\n", name)
		default:
			fmt.Fprintf(out, "%s: ok\n", name)
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d mod(s) differ from what was installed", bad)
	}
	return nil
}
