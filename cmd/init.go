package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/total70/journal-ai/internal/config"
	"github.com/total70/journal-ai/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user configuration file",
	Long: `Interactively choose the default provider and model and write them to
~/.config/journal-ai/config.yaml. Without a terminal the --provider and --model
flags are used as given. The OpenAI API key is never written; set ` + config.APIKeyEnv + ` instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		return runInit(cmd, path)
	},
}

func runInit(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	base, err := config.Defaults().WithOverrides(providerName, modelName)
	if err != nil {
		return err
	}

	cfg := base
	if isTerminal(cmd.InOrStdin()) {
		cfg, err = ui.RunWizard(base, cmd.InOrStdin(), out)
		if errors.Is(err, ui.ErrCanceled) {
			fmt.Fprintln(out, "Aborted, nothing written.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Config written to %s\n", path)
	fmt.Fprintf(out, "  provider: %s\n  model: %s\n", cfg.Provider, cfg.Model())
	if cfg.Provider == config.ProviderOpenAI {
		fmt.Fprintf(out, "Remember to export %s before running journal-ai.\n", config.APIKeyEnv)
	}
	return nil
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
