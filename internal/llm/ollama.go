package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/total70/journal-ai/internal/config"
)

// probeTimeout bounds every availability check.
const probeTimeout = 2 * time.Second

// Ollama is a client for a local Ollama server's generate API.
type Ollama struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewOllama creates a new Ollama client. timeout bounds each generation call.
func NewOllama(cfg config.OllamaConfig, timeout time.Duration) (*Ollama, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model not configured")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL not configured")
	}

	return &Ollama{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		timeout: timeout,
		client:  &http.Client{},
	}, nil
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`

	body string
}

func (o *Ollama) Name() string { return "ollama" }

// Generate sends the combined instruction and input to /api/generate in
// JSON mode and parses the embedded result.
func (o *Ollama) Generate(ctx context.Context, rawText, systemPrompt string) (Result, error) {
	resp, err := o.generate(ctx, ollamaRequest{
		Model:   o.model,
		Prompt:  buildLocalPrompt(rawText),
		System:  systemPrompt,
		Stream:  false,
		Format:  "json",
		Options: &ollamaOptions{Temperature: 0.1},
	})
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return Result{}, &MalformedResponseError{Backend: o.Name(), Payload: resp.body, Err: errors.New("missing response field")}
	}
	return parseResult(o.Name(), resp.Response)
}

// Summarize asks the model for a plain-text summary.
func (o *Ollama) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := o.generate(ctx, ollamaRequest{
		Model:   o.model,
		Prompt:  buildSummaryPrompt(text),
		Stream:  false,
		Options: &ollamaOptions{Temperature: 0.3},
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Response)
	if summary == "" {
		return "", fmt.Errorf("%w: ollama returned no text", ErrEmptyCompletion)
	}
	return summary, nil
}

func (o *Ollama) generate(ctx context.Context, reqBody ollamaRequest) (*ollamaResponse, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := o.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, unreachable(o.Name(), fmt.Errorf("failed to connect to %s: %w", o.baseURL, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unreachable(o.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		var errResp ollamaResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return nil, &RejectedError{Backend: o.Name(), StatusCode: resp.StatusCode, Message: msg}
	}

	var result ollamaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &MalformedResponseError{Backend: o.Name(), Payload: string(body), Err: err}
	}

	if result.Error != "" {
		return nil, &RejectedError{Backend: o.Name(), StatusCode: resp.StatusCode, Message: result.Error}
	}

	result.body = string(body)
	return &result, nil
}

// IsAvailable checks that the server answers GET /api/tags.
func (o *Ollama) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// BaseURL returns the server address the client talks to.
func (o *Ollama) BaseURL() string { return o.baseURL }
