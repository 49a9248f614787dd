package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/platform"
)

func newPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Show the detected host platform",
		Long: `Show the platform tag of the host (for example linux64, win32 or mac) and
the directory containing the execkit binary.

With --unix, print only whether the platform is Unix-like.`,
		Args: cobra.NoArgs,
		RunE: runPlatformCmd,
	}

	cmd.Flags().Bool("unix", false, "print whether the platform is Unix-like")

	return cmd
}

func runPlatformCmd(cmd *cobra.Command, _ []string) error {
	unix, err := cmd.Flags().GetBool("unix")
	if err != nil {
		return fmt.Errorf("get unix flag: %w", err)
	}

	tag := platform.Detect()
	out := cmd.OutOrStdout()

	if unix {
		fmt.Fprintln(out, platform.IsUnix(tag))
		return nil
	}

	dir, err := platform.SelfDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "platform: %s\n", tag)
	fmt.Fprintf(out, "self:     %s\n", dir)
	return nil
}
