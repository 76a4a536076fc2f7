package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/total70/journal-ai/internal/config"
	"github.com/total70/journal-ai/internal/journal"
	"github.com/total70/journal-ai/internal/llm"
	"github.com/total70/journal-ai/internal/ui"
	"github.com/total70/journal-ai/pkg/notify"
)

// ErrEmptyInput is returned when there is no note text to process.
var ErrEmptyInput = errors.New("no content provided")

// Notifier announces saved entries and failed saves.
type Notifier interface {
	Info(title, message string) error
	Error(title, message string) error
}

// RunOptions controls a single Run.
type RunOptions struct {
	// Preview renders the generated entry and skips the journal.
	Preview bool
	// DryRun renders the entry and reports the journal command without running it.
	DryRun bool
	// SystemPrompt replaces the built-in instructions when non-empty.
	SystemPrompt string
}

// Outcome is what a Run produced.
type Outcome struct {
	Result   llm.Result
	Location string
	Saved    bool
}

// Pipeline turns raw notes into journal entries using one backend.
type Pipeline struct {
	backend  llm.Backend
	gate     bool
	journal  journal.Journal
	binary   string
	notifier Notifier
	logger   *slog.Logger
	out      io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithOutput sets where previews and locations are printed.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithNotifier enables a notification after each saved entry.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithBackend bypasses provider selection. When gate is true an unavailable
// backend aborts the run instead of logging a warning.
func WithBackend(b llm.Backend, gate bool) Option {
	return func(p *Pipeline) {
		p.backend = b
		p.gate = gate
	}
}

// New builds a Pipeline for the provider selected in cfg.
func New(cfg *config.Config, j journal.Journal, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		journal: j,
		binary:  cfg.Journal.Binary,
		logger:  slog.New(slog.DiscardHandler),
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.backend == nil {
		switch cfg.Provider {
		case config.ProviderOllama:
			b, err := llm.NewOllama(cfg.Ollama, cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize ollama backend: %w", err)
			}
			p.backend, p.gate = b, false
		case config.ProviderOpenAI:
			b, err := llm.NewOpenAI(cfg.OpenAI, cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize openai backend: %w", err)
			}
			p.backend, p.gate = b, true
		default:
			return nil, fmt.Errorf("%w: unknown provider %q", config.ErrConfigParse, cfg.Provider)
		}
	}

	if p.notifier == nil && cfg.Notify {
		p.notifier = notify.New()
	}

	return p, nil
}

// Backend returns the selected backend.
func (p *Pipeline) Backend() llm.Backend { return p.backend }

// Run generates an entry from raw and, unless previewing, stores it.
func (p *Pipeline) Run(ctx context.Context, raw string, opts RunOptions) (*Outcome, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyInput
	}

	log := p.logger.With("run_id", uuid.NewString(), "backend", p.backend.Name())

	j := p.journal
	if opts.DryRun {
		j = journal.DryRun{Binary: p.binary}
	}
	if !opts.Preview {
		if c, ok := j.(journal.Checker); ok {
			if err := c.Check(ctx); err != nil {
				return nil, err
			}
		}
	}

	if err := p.probe(ctx, log); err != nil {
		return nil, err
	}

	log.Debug("generating entry", "input_len", len(raw), "custom_system", opts.SystemPrompt != "")
	res, err := p.backend.Generate(ctx, raw, opts.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	log.Debug("entry generated", "title", res.Title, "tags", res.Tags)

	out := &Outcome{Result: res}

	if opts.Preview || opts.DryRun {
		fmt.Fprint(p.out, ui.RenderPreview(res))
	}
	if opts.Preview {
		return out, nil
	}

	location, err := j.Create(ctx, res.Title, res.Content)
	if err != nil {
		if p.notifier != nil && !opts.DryRun {
			_ = p.notifier.Error("journal-ai", "Failed to save "+res.Title)
		}
		return nil, err
	}
	out.Location = location
	if location != "" {
		fmt.Fprintln(p.out, location)
	}

	if opts.DryRun {
		return out, nil
	}
	out.Saved = true
	log.Info("entry saved", "title", res.Title)

	if p.notifier != nil {
		if err := p.notifier.Info("journal-ai", "Saved "+res.Title); err != nil {
			log.Debug("notification failed", "error", err)
		}
	}

	return out, nil
}

// Summarize returns a short prose summary of raw.
func (p *Pipeline) Summarize(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyInput
	}

	log := p.logger.With("run_id", uuid.NewString(), "backend", p.backend.Name())
	if err := p.probe(ctx, log); err != nil {
		return "", err
	}

	summary, err := p.backend.Summarize(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return summary, nil
}

func (p *Pipeline) probe(ctx context.Context, log *slog.Logger) error {
	if p.backend.IsAvailable(ctx) {
		return nil
	}
	if p.gate {
		return fmt.Errorf("%w: %s backend is not available, check your credential and base URL",
			llm.ErrBackendUnreachable, p.backend.Name())
	}
	log.Warn("backend is not responding, attempting generation anyway")
	return nil
}
