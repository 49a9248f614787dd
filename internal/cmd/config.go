package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/execkit/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View and modify configuration",
		Long: `View and modify execkit configuration.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key.
With two arguments, sets the value for the specified key.`,
		Example: `  # Show all config
  execkit config

  # Show value for a specific key
  execkit config storage.logs

  # Set a value
  execkit config log.verbosity 1

  # Set default environment overrides
  execkit config exec.env "CI=true,GOFLAGS=-mod=mod"

  # Open config file in editor
  execkit config --edit`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runConfigCmd,
	}

	cmd.Flags().Bool("edit", false, "open config file in $EDITOR")

	return cmd
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	loader := LoaderFromContext(cmd.Context())
	if loader == nil {
		return errors.New("config loader not initialized")
	}

	editFlag, err := cmd.Flags().GetBool("edit")
	if err != nil {
		return fmt.Errorf("get edit flag: %w", err)
	}
	if editFlag {
		return runEdit(loader)
	}

	out := cmd.OutOrStdout()
	switch len(args) {
	case 0:
		return runShowAll(out, loader)
	case 1:
		return runShowKey(out, loader, args[0])
	default:
		return runSetKey(out, loader, args[0], args[1])
	}
}

// runEdit opens the config file in $EDITOR. The editor needs the terminal, so
// it is attached to the CLI's own stdio rather than run through the executor.
func runEdit(loader *config.Loader) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return config.ErrNoEditor
	}

	//nolint:gosec // G204: the editor is chosen by the user
	editorCmd := osexec.Command(editor, loader.Path())
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runShowAll(out io.Writer, loader *config.Loader) error {
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	_, err = out.Write(data)
	return err
}

func runShowKey(out io.Writer, loader *config.Loader, key string) error {
	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		fmt.Fprintln(out)
	case string:
		fmt.Fprintln(out, v)
	case map[string]any, []any, []string:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		fmt.Fprintln(out, value)
	}

	return nil
}

func runSetKey(out io.Writer, loader *config.Loader, key, value string) error {
	if err := loader.Set(key, value); err != nil {
		return err
	}

	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}
