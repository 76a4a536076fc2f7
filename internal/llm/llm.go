package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxTags is the largest number of tags a backend may return.
const MaxTags = 3

var (
	ErrMissingCredential  = errors.New("missing credential")
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrBackendRejected    = errors.New("backend rejected request")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrEmptyCompletion    = errors.New("empty completion")
)

// Backend turns raw note text into a structured journal entry.
type Backend interface {
	// Name identifies the backend in logs and messages.
	Name() string
	// Generate cleans up rawText and returns title, content and tags.
	// An empty systemPrompt selects the backend's built-in instruction.
	Generate(ctx context.Context, rawText, systemPrompt string) (Result, error)
	// Summarize returns a short prose summary of text.
	Summarize(ctx context.Context, text string) (string, error)
	// IsAvailable is a best-effort liveness check. It never fails loudly.
	IsAvailable(ctx context.Context) bool
}

// Result is the structured entry produced by a backend.
type Result struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// RejectedError is returned when a backend answers with a non-success status.
type RejectedError struct {
	Backend    string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Backend, e.StatusCode, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrBackendRejected
}

// MalformedResponseError is returned when a successful response cannot be
// turned into a Result. Payload holds the offending text verbatim.
type MalformedResponseError struct {
	Backend string
	Payload string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v\nPayload: %s", e.Backend, e.Err, e.Payload)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func unreachable(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBackendUnreachable, backend, err)
}

// wireResult mirrors the JSON object the model is asked to emit.
type wireResult struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

// parseResult decodes the model's embedded JSON, validates its shape and
// sanitizes the title.
func parseResult(backend, payload string) (Result, error) {
	malformed := func(err error) error {
		return &MalformedResponseError{Backend: backend, Payload: payload, Err: err}
	}

	var w wireResult
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Result{}, malformed(err)
	}
	if w.Title == nil || strings.TrimSpace(*w.Title) == "" {
		return Result{}, malformed(errors.New("missing title"))
	}
	if w.Content == nil || strings.TrimSpace(*w.Content) == "" {
		return Result{}, malformed(errors.New("missing content"))
	}
	if len(w.Tags) > MaxTags {
		return Result{}, malformed(fmt.Errorf("expected at most %d tags, got %d", MaxTags, len(w.Tags)))
	}

	tags := make([]string, 0, len(w.Tags))
	for _, t := range w.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return Result{
		Title:   SanitizeTitle(*w.Title),
		Content: *w.Content,
		Tags:    tags,
	}, nil
}
