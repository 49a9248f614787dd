package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/exec"
)

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <line>",
		Short: "Show how a command line is split into arguments",
		Long: `Split a command line on runs of whitespace and print one argument per line.

This is the splitting used by --line. Quotes and escapes have no special
meaning.`,
		Example: `  execkit split "go test  ./...   -run TestFoo"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, token := range exec.Split(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
			return nil
		},
	}
}
