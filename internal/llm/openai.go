package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/total70/journal-ai/internal/config"
)

// OpenAI is a client for an OpenAI-compatible chat completion API.
type OpenAI struct {
	baseURL string
	model   string
	apiKey  config.Secret
	timeout time.Duration
	client  openai.Client
}

// NewOpenAI creates a new chat completion client. It fails with
// ErrMissingCredential when no API key is configured.
func NewOpenAI(cfg config.OpenAIConfig, timeout time.Duration) (*OpenAI, error) {
	if !cfg.APIKey.Set() {
		return nil, fmt.Errorf("%w: OpenAI API key not configured, set %s", ErrMissingCredential, config.APIKeyEnv)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model not configured")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey.Reveal()),
		option.WithHTTPClient(&http.Client{}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL+"/"))
	}

	return &OpenAI{
		baseURL: baseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  openai.NewClient(opts...),
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func buildMessages(input, systemPrompt string) []openai.ChatCompletionMessageParamUnion {
	if systemPrompt == "" {
		systemPrompt = cloudSystemPrompt
	}
	return []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(fillPrompt(cloudUserPrompt, input)),
	}
}

// Generate sends a system+user exchange in JSON object mode and parses the
// first choice.
func (o *OpenAI) Generate(ctx context.Context, rawText, systemPrompt string) (Result, error) {
	content, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    buildMessages(rawText, systemPrompt),
		Temperature: openai.Float(0.1),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return Result{}, err
	}
	return parseResult(o.Name(), content)
}

// Summarize asks the model for a plain-text summary.
func (o *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	content, err := o.complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(content)
	if summary == "" {
		return "", fmt.Errorf("%w: openai returned no text", ErrEmptyCompletion)
	}
	return summary, nil
}

func (o *OpenAI) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var raw []byte
	resp, err := o.client.Chat.Completions.New(ctx, params, option.WithMiddleware(captureBody(&raw)))
	if err != nil {
		return "", o.classify(err, raw)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in OpenAI response", ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

// captureBody keeps a copy of the response body so decode failures can
// report what the server actually sent.
func captureBody(dst *[]byte) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err != nil || resp == nil || resp.Body == nil {
			return resp, err
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		*dst = body
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr != nil {
			return resp, readErr
		}
		return resp, nil
	}
}

func (o *OpenAI) classify(err error, raw []byte) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &RejectedError{Backend: o.Name(), StatusCode: apiErr.StatusCode, Message: msg}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return unreachable(o.Name(), err)
	}

	return &MalformedResponseError{Backend: o.Name(), Payload: string(raw), Err: err}
}

// IsAvailable reports whether a credential is present and the base URL is
// well formed. No request is made.
func (o *OpenAI) IsAvailable(ctx context.Context) bool {
	if !o.apiKey.Set() {
		return false
	}
	u, err := url.Parse(o.baseURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// BaseURL returns the API root the client talks to.
func (o *OpenAI) BaseURL() string { return o.baseURL }
