package entry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/total70/journal-ai/internal/config"
	"github.com/total70/journal-ai/internal/journal"
	"github.com/total70/journal-ai/internal/llm"
)

type fakeBackend struct {
	available bool
	result    llm.Result
	err       error
	summary   string

	generated    int
	gotRaw       string
	gotSystem    string
	summarized   int
	availability int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, raw, system string) (llm.Result, error) {
	f.generated++
	f.gotRaw, f.gotSystem = raw, system
	return f.result, f.err
}

func (f *fakeBackend) Summarize(_ context.Context, text string) (string, error) {
	f.summarized++
	return f.summary, f.err
}

func (f *fakeBackend) IsAvailable(context.Context) bool {
	f.availability++
	return f.available
}

type fakeJournal struct {
	location string
	err      error
	checkErr error

	calls   int
	checks  int
	title   string
	content string
}

func (f *fakeJournal) Create(_ context.Context, title, content string) (string, error) {
	f.calls++
	f.title, f.content = title, content
	return f.location, f.err
}

func (f *fakeJournal) Check(context.Context) error {
	f.checks++
	return f.checkErr
}

type fakeNotifier struct {
	info, errs []string
}

func (f *fakeNotifier) Info(title, message string) error {
	f.info = append(f.info, message)
	return nil
}

func (f *fakeNotifier) Error(title, message string) error {
	f.errs = append(f.errs, message)
	return nil
}

func sampleResult() llm.Result {
	return llm.Result{Title: "morning-walk.md", Content: "Went for a walk.", Tags: []string{"health"}}
}

func newTestPipeline(t *testing.T, b llm.Backend, gate bool, j journal.Journal, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(config.Defaults(), j, append([]Option{WithBackend(b, gate)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return p
}

func TestRun_SavesEntry(t *testing.T) {
	backend := &fakeBackend{available: true, result: sampleResult()}
	j := &fakeJournal{location: "/journal/2026/10/morning-walk.md"}
	var out bytes.Buffer
	notifier := &fakeNotifier{}

	p := newTestPipeline(t, backend, true, j, WithOutput(&out), WithNotifier(notifier))
	outcome, err := p.Run(context.Background(), "  went for a walk  ", RunOptions{SystemPrompt: "be brief"})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if !outcome.Saved || outcome.Location != j.location {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if backend.gotRaw != "went for a walk" || backend.gotSystem != "be brief" {
		t.Errorf("backend got raw=%q system=%q", backend.gotRaw, backend.gotSystem)
	}
	if j.title != "morning-walk.md" || j.content != "Went for a walk." {
		t.Errorf("journal got title=%q content=%q", j.title, j.content)
	}
	if j.checks != 1 {
		t.Errorf("journal should be checked once, got %d", j.checks)
	}
	if !strings.Contains(out.String(), j.location) {
		t.Errorf("output should contain the location, got %q", out.String())
	}
	if len(notifier.info) != 1 {
		t.Errorf("expected one notification, got %v", notifier.info)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	backend := &fakeBackend{available: true}
	j := &fakeJournal{}
	p := newTestPipeline(t, backend, false, j)

	_, err := p.Run(context.Background(), " \n\t ", RunOptions{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput, got: %v", err)
	}
	if backend.availability+backend.generated+j.checks+j.calls != 0 {
		t.Error("empty input must not reach any collaborator")
	}
}

func TestRun_PreviewSkipsJournal(t *testing.T) {
	backend := &fakeBackend{available: true, result: sampleResult()}
	j := &fakeJournal{checkErr: journal.ErrToolUnavailable}
	var out bytes.Buffer

	p := newTestPipeline(t, backend, false, j, WithOutput(&out))
	outcome, err := p.Run(context.Background(), "went for a walk", RunOptions{Preview: true})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if outcome.Saved {
		t.Error("preview must not save")
	}
	if j.calls != 0 || j.checks != 0 {
		t.Errorf("preview must not touch the journal (calls=%d checks=%d)", j.calls, j.checks)
	}
	for _, want := range []string{"morning-walk.md", "Went for a walk.", "health"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("preview output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_DryRunReportsCommand(t *testing.T) {
	backend := &fakeBackend{available: true, result: sampleResult()}
	j := &fakeJournal{}
	var out bytes.Buffer

	p := newTestPipeline(t, backend, false, j, WithOutput(&out))
	outcome, err := p.Run(context.Background(), "went for a walk", RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if outcome.Saved {
		t.Error("dry run must not report a save")
	}
	if j.calls != 0 {
		t.Error("dry run must not invoke the real journal")
	}
	if !strings.Contains(out.String(), "[DRY RUN]") || !strings.Contains(out.String(), "file-journal new") {
		t.Errorf("dry run should describe the command, got:\n%s", out.String())
	}
}

func TestRun_JournalCheckedBeforeBackend(t *testing.T) {
	backend := &fakeBackend{available: true, result: sampleResult()}
	j := &fakeJournal{checkErr: journal.ErrToolUnavailable}

	p := newTestPipeline(t, backend, false, j)
	_, err := p.Run(context.Background(), "note", RunOptions{})
	if !errors.Is(err, journal.ErrToolUnavailable) {
		t.Fatalf("Expected ErrToolUnavailable, got: %v", err)
	}
	if backend.availability != 0 || backend.generated != 0 {
		t.Error("backend must not be contacted when the journal is unusable")
	}
}

func TestRun_GateAbortsWithoutRequest(t *testing.T) {
	backend := &fakeBackend{available: false, result: sampleResult()}
	j := &fakeJournal{}

	p := newTestPipeline(t, backend, true, j)
	_, err := p.Run(context.Background(), "note", RunOptions{})
	if !errors.Is(err, llm.ErrBackendUnreachable) {
		t.Fatalf("Expected ErrBackendUnreachable, got: %v", err)
	}
	if backend.generated != 0 {
		t.Error("gated backend must not receive a generation request")
	}
	if j.calls != 0 {
		t.Error("journal must not be invoked")
	}
}

func TestRun_AdvisoryProbeWarnsAndProceeds(t *testing.T) {
	backend := &fakeBackend{available: false, result: sampleResult()}
	j := &fakeJournal{location: "saved"}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	p := newTestPipeline(t, backend, false, j, WithLogger(logger))
	if _, err := p.Run(context.Background(), "note", RunOptions{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if backend.generated != 1 {
		t.Errorf("expected one generation, got %d", backend.generated)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "run_id=") {
		t.Errorf("expected a warning carrying run_id, got: %s", logs.String())
	}
}

func TestRun_GenerationErrorPropagates(t *testing.T) {
	backend := &fakeBackend{available: true, err: &llm.RejectedError{Backend: "fake", StatusCode: 500, Message: "boom"}}
	j := &fakeJournal{}

	p := newTestPipeline(t, backend, false, j)
	_, err := p.Run(context.Background(), "note", RunOptions{})
	if !errors.Is(err, llm.ErrBackendRejected) {
		t.Fatalf("Expected ErrBackendRejected, got: %v", err)
	}
	if j.calls != 0 {
		t.Error("journal must not be invoked after a failed generation")
	}
}

func TestRun_JournalFailureNotifies(t *testing.T) {
	backend := &fakeBackend{available: true, result: sampleResult()}
	toolErr := &journal.ToolFailedError{Binary: "file-journal", Stderr: "disk full", Err: errors.New("exit status 1")}
	j := &fakeJournal{err: toolErr}
	notifier := &fakeNotifier{}

	p := newTestPipeline(t, backend, false, j, WithNotifier(notifier))
	_, err := p.Run(context.Background(), "note", RunOptions{})
	if !errors.Is(err, journal.ErrToolFailed) {
		t.Fatalf("Expected ErrToolFailed, got: %v", err)
	}
	if len(notifier.errs) != 1 || len(notifier.info) != 0 {
		t.Errorf("expected one error notification, got info=%v errs=%v", notifier.info, notifier.errs)
	}
}

func TestSummarize(t *testing.T) {
	backend := &fakeBackend{available: true, summary: "A walk."}
	p := newTestPipeline(t, backend, false, &fakeJournal{})

	got, err := p.Summarize(context.Background(), "went for a walk")
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	if got != "A walk." {
		t.Errorf("summary: got %q", got)
	}

	if _, err := p.Summarize(context.Background(), ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got: %v", err)
	}
}

func TestSummarize_Gated(t *testing.T) {
	backend := &fakeBackend{available: false}
	p := newTestPipeline(t, backend, true, &fakeJournal{})

	if _, err := p.Summarize(context.Background(), "note"); !errors.Is(err, llm.ErrBackendUnreachable) {
		t.Fatalf("Expected ErrBackendUnreachable, got: %v", err)
	}
	if backend.summarized != 0 {
		t.Error("gated backend must not be asked to summarize")
	}
}

func TestNew_MissingCredential(t *testing.T) {
	cfg, err := config.Defaults().WithOverrides("openai", "")
	if err != nil {
		t.Fatalf("WithOverrides() failed: %v", err)
	}

	_, err = New(cfg, &fakeJournal{})
	if !errors.Is(err, llm.ErrMissingCredential) {
		t.Fatalf("Expected ErrMissingCredential, got: %v", err)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.Defaults().WithAPIKey("sk-test")

	p, err := New(cfg, &fakeJournal{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if p.Backend().Name() != "ollama" || p.gate {
		t.Errorf("expected advisory ollama backend, got %s gate=%v", p.Backend().Name(), p.gate)
	}

	cfg, _ = cfg.WithOverrides("openai", "")
	p, err = New(cfg, &fakeJournal{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if p.Backend().Name() != "openai" || !p.gate {
		t.Errorf("expected gated openai backend, got %s gate=%v", p.Backend().Name(), p.gate)
	}
}

func TestRun_OllamaEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			payload, _ := json.Marshal(map[string]any{
				"title":   "Morning Walk",
				"content": "Went for a walk.",
			})
			json.NewEncoder(w).Encode(map[string]any{"response": string(payload), "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := config.Defaults()
	cfg.Ollama.BaseURL = server.URL
	j := &fakeJournal{location: "ok"}

	p, err := New(cfg, j)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	outcome, err := p.Run(context.Background(), "went for a walk", RunOptions{})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if j.title != "morning-walk.md" {
		t.Errorf("title should be sanitized, got %q", j.title)
	}
	if outcome.Result.Tags == nil || len(outcome.Result.Tags) != 0 {
		t.Errorf("absent tags should become an empty slice, got %#v", outcome.Result.Tags)
	}
}
