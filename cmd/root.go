package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/total70/journal-ai/internal/config"
	"github.com/total70/journal-ai/internal/entry"
	"github.com/total70/journal-ai/internal/journal"
	"github.com/total70/journal-ai/internal/ui"
)

var (
	configPath   string
	providerName string
	modelName    string
	dryRun       bool
	preview      bool
	systemPrompt string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "journal-ai [content]",
	Short: "Turn free-text notes into journal entries using an LLM",
	Long: `journal-ai sends a note to a local Ollama server or to OpenAI, which
returns a title, cleaned-up content and tags. The result is saved with
file-journal. Content is read from standard input when no argument is given.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCreate,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file")
	flags.StringVarP(&providerName, "provider", "p", "", "LLM provider (ollama, openai)")
	flags.StringVarP(&modelName, "model", "m", "", "Model to use for the selected provider")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be saved without calling file-journal")
	rootCmd.Flags().BoolVar(&preview, "preview", false, "Show the generated entry without saving it")
	rootCmd.Flags().StringVar(&systemPrompt, "system", "", "Custom system prompt")
}

func runCreate(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	cfg, err := resolveConfig(cmd, logger)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	p, err := entry.New(cfg, journal.New(cfg.Journal.Binary),
		entry.WithLogger(logger),
		entry.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	_, err = p.Run(cmd.Context(), raw, entry.RunOptions{
		Preview:      preview,
		DryRun:       dryRun,
		SystemPrompt: systemPrompt,
	})
	return err
}

// resolveConfig loads the config, applies flag overrides and, for OpenAI
// without a credential, prompts for one when attached to a terminal.
func resolveConfig(cmd *cobra.Command, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	} else {
		logger.Debug("no config file found, using defaults")
	}

	if cfg, err = cfg.WithOverrides(providerName, modelName); err != nil {
		return nil, err
	}
	logger.Debug("provider selected", "provider", cfg.Provider, "model", cfg.Model())

	if cfg.Provider == config.ProviderOpenAI && !cfg.OpenAI.APIKey.Set() && isTerminal(cmd.InOrStdin()) {
		key, err := ui.PromptSecret(config.APIKeyEnv+" is not set. Enter your OpenAI API key:",
			cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		if key != "" {
			cfg = cfg.WithAPIKey(key)
			logger.Debug("credential entered interactively", "api_key", cfg.OpenAI.APIKey)
		}
	}

	return cfg, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readInput joins args, or reads r when there are none and r is not a terminal.
func readInput(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isTerminal(r) {
		return "", fmt.Errorf("%w: pass content as an argument or pipe it via stdin", entry.ErrEmptyInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: stdin was empty", entry.ErrEmptyInput)
	}
	return string(data), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
