package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// ProjectFile is the project-local config file, resolved against the working directory.
const ProjectFile = ".journal-ai.yaml"

// APIKeyEnv holds the cloud backend credential.
const APIKeyEnv = "OPENAI_API_KEY"

var (
	ErrConfigParse    = errors.New("invalid config file")
	ErrHomeResolution = errors.New("could not determine home directory")
)

// Config holds all application configuration.
type Config struct {
	Provider Provider      `yaml:"provider"`
	Ollama   OllamaConfig  `yaml:"ollama"`
	OpenAI   OpenAIConfig  `yaml:"openai"`
	Journal  JournalConfig `yaml:"journal"`
	Timeout  time.Duration `yaml:"timeout"`
	Notify   bool          `yaml:"notify"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// OllamaConfig contains settings for a local Ollama server.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// OpenAIConfig contains settings for an OpenAI-compatible chat completion API.
// APIKey is never read from or written to the config file.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  Secret `yaml:"-"`
}

// JournalConfig configures the external journaling tool.
type JournalConfig struct {
	Binary string `yaml:"binary"`
}

// Secret is a credential that masks itself when printed or logged.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + string(s[len(s)-4:])
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Set reports whether a credential is present.
func (s Secret) Set() bool {
	return strings.TrimSpace(string(s)) != ""
}

// Reveal returns the raw credential for use in request headers.
func (s Secret) Reveal() string {
	return string(s)
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// DefaultPath returns ~/.config/journal-ai/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHomeResolution, err)
	}
	return filepath.Join(home, ".config", "journal-ai", "config.yaml"), nil
}

// Load resolves the effective configuration. The first existing file among
// explicitPath, ProjectFile and DefaultPath is read; sources are not merged.
// The credential is always taken from the environment.
func Load(explicitPath string) (*Config, error) {
	return load(explicitPath, ProjectFile, DefaultPath, os.Getenv)
}

func load(explicitPath, projectPath string, userPath func() (string, error), getenv func(string) string) (*Config, error) {
	var candidates []string
	if explicitPath != "" {
		candidates = append(candidates, explicitPath)
	}
	if projectPath != "" {
		candidates = append(candidates, projectPath)
	}

	path, found := firstExisting(candidates)
	if !found {
		p, err := userPath()
		if err != nil {
			return nil, err
		}
		path, found = firstExisting([]string{p})
	}

	cfg := &Config{}
	if found {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
	}

	cfg.ApplyDefaults()
	cfg.loadAPIKey(getenv)
	return cfg, nil
}

func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Provider != "" && !cfg.Provider.Valid() {
		return nil, fmt.Errorf("%w: unknown provider %q (supported: ollama, openai)", ErrConfigParse, cfg.Provider)
	}
	return &cfg, nil
}

func (c *Config) loadAPIKey(getenv func(string) string) {
	if c.OpenAI.APIKey.Set() {
		return
	}
	if key := strings.TrimSpace(getenv(APIKeyEnv)); key != "" {
		c.OpenAI.APIKey = Secret(key)
	}
}

// Valid reports whether p names a supported backend.
func (p Provider) Valid() bool {
	return p == ProviderOllama || p == ProviderOpenAI
}

// ApplyDefaults sets default values for empty configuration fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOllama
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.2"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Journal.Binary == "" {
		c.Journal.Binary = "file-journal"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
}

// WithOverrides returns a copy of c with the provider and the selected
// backend's model replaced when non-empty.
func (c *Config) WithOverrides(provider, model string) (*Config, error) {
	out := *c
	if provider != "" {
		p := Provider(strings.ToLower(provider))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown provider: %s (supported: ollama, openai)", provider)
		}
		out.Provider = p
	}
	if model != "" {
		switch out.Provider {
		case ProviderOllama:
			out.Ollama.Model = model
		case ProviderOpenAI:
			out.OpenAI.Model = model
		}
	}
	return &out, nil
}

// WithAPIKey returns a copy of c carrying key as the cloud credential.
func (c *Config) WithAPIKey(key string) *Config {
	out := *c
	out.OpenAI.APIKey = Secret(strings.TrimSpace(key))
	return &out
}

// Model returns the model of the selected backend.
func (c *Config) Model() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAI.Model
	}
	return c.Ollama.Model
}

// Save writes cfg as YAML to path, creating the parent directory.
// The credential is never written.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
