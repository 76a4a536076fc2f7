package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/total70/journal-ai/internal/config"
	"github.com/total70/journal-ai/internal/entry"
	"github.com/total70/journal-ai/internal/journal"
	"github.com/total70/journal-ai/internal/ui"
)

var errDoctorFailed = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, provider and file-journal",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), verbose)
	ok := true
	line := func(s string) { fmt.Fprintln(out, s) }

	line(ui.Header("journal-ai doctor"))

	cfg, err := config.Load(configPath)
	if err != nil {
		line(ui.Check(false, "Config: "+err.Error()))
		return errDoctorFailed
	}
	if cfg.Source != "" {
		line(ui.Check(true, "Config: "+cfg.Source))
	} else {
		line(ui.Check(true, "Config: built-in defaults"))
	}

	if cfg, err = cfg.WithOverrides(providerName, modelName); err != nil {
		line(ui.Check(false, err.Error()))
		return errDoctorFailed
	}

	line(ui.Detail("Provider", string(cfg.Provider)))
	line(ui.Detail("Model", cfg.Model()))
	switch cfg.Provider {
	case config.ProviderOllama:
		line(ui.Detail("Base URL", cfg.Ollama.BaseURL))
	case config.ProviderOpenAI:
		line(ui.Detail("Base URL", cfg.OpenAI.BaseURL))
		if cfg.OpenAI.APIKey.Set() {
			line(ui.Check(true, config.APIKeyEnv+": "+cfg.OpenAI.APIKey.String()))
		} else {
			line(ui.Check(false, config.APIKeyEnv+": not set"))
			ok = false
		}
	}
	line(ui.Detail("Timeout", cfg.Timeout.String()))

	ok = checkJournal(cmd, out, cfg) && ok
	ok = checkBackend(cmd, out, cfg, logger) && ok

	if !ok {
		return errDoctorFailed
	}
	return nil
}

func checkJournal(cmd *cobra.Command, out io.Writer, cfg *config.Config) bool {
	if err := journal.New(cfg.Journal.Binary).Check(cmd.Context()); err != nil {
		fmt.Fprintln(out, ui.Check(false, cfg.Journal.Binary+": not found"))
		fmt.Fprintln(out, ui.Hint("Install it from "+journal.InstallURL))
		return false
	}
	fmt.Fprintln(out, ui.Check(true, cfg.Journal.Binary+": installed"))
	return true
}

func checkBackend(cmd *cobra.Command, out io.Writer, cfg *config.Config, logger *slog.Logger) bool {
	p, err := entry.New(cfg, journal.DryRun{Binary: cfg.Journal.Binary})
	if err != nil {
		fmt.Fprintln(out, ui.Check(false, "Backend: "+err.Error()))
		return false
	}

	name := p.Backend().Name()
	if !p.Backend().IsAvailable(cmd.Context()) {
		fmt.Fprintln(out, ui.Check(false, name+": not reachable"))
		if cfg.Provider == config.ProviderOllama {
			fmt.Fprintln(out, ui.Hint("Start it with `ollama serve` and pull the model with `ollama pull "+cfg.Model()+"`"))
		}
		return false
	}
	logger.Debug("backend reachable", "backend", name)
	fmt.Fprintln(out, ui.Check(true, name+": available"))
	return true
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
