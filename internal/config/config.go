// Package config loads runtime configuration by layering defaults, an
// optional YAML file, and CREWSCRAPE_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains every resolved setting the pipeline consumes. The core
// components receive values from here; they never read the environment
// themselves.
type Config struct {
	// Provider selects the semantic-extraction backend: openai, gemini,
	// or anthropic.
	Provider string `koanf:"provider"`
	// Model is the model identifier passed to the provider.
	Model string `koanf:"model"`

	// Per-provider credentials. Only the active provider's key is required.
	OpenAIKey    string `koanf:"openai_key"`
	GeminiKey    string `koanf:"gemini_key"`
	AnthropicKey string `koanf:"anthropic_key"`
	// LLMBaseURL overrides the provider's default endpoint (local or
	// proxied OpenAI-compatible servers).
	LLMBaseURL string `koanf:"llm_base_url"`

	// Headless controls whether the browser runs without a window.
	Headless bool `koanf:"headless"`
	// BrowserTimeout bounds one page navigation.
	BrowserTimeout time.Duration `koanf:"browser_timeout"`
	// RetryAttempts is the schedule-fetch retry budget.
	RetryAttempts int `koanf:"retry_attempts"`
	// RequestTimeout bounds one whole scrape request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// MaxConcurrentSchools caps parallel scrapes in batch tooling.
	MaxConcurrentSchools int `koanf:"max_concurrent_schools"`

	// Addr is the API listen address.
	Addr string `koanf:"addr"`
	// ResultsDir receives --save/--csv artifacts.
	ResultsDir string `koanf:"results_dir"`
	// SitesFile optionally points at a YAML site-override file.
	SitesFile string `koanf:"sites_file"`
	// LogLevel: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Provider:             "openai",
		Model:                "gpt-4o-mini",
		Headless:             true,
		BrowserTimeout:       60 * time.Second,
		RetryAttempts:        3,
		RequestTimeout:       180 * time.Second,
		MaxConcurrentSchools: 5,
		Addr:                 ":8080",
		ResultsDir:           "results",
		LogLevel:             "info",
	}
}

// Load builds a Config. Precedence, low to high: defaults, YAML file named
// by CREWSCRAPE_CONFIG, then CREWSCRAPE_* environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	k := koanf.New(".")
	if path := os.Getenv("CREWSCRAPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	envProvider := env.Provider("CREWSCRAPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "crewscrape_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// mid-pipeline failures.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model must not be empty")
	}
	if c.RetryAttempts < 1 {
		return errors.New("retry_attempts must be at least 1")
	}
	if c.BrowserTimeout <= 0 || c.RequestTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MaxConcurrentSchools < 1 {
		return errors.New("max_concurrent_schools must be at least 1")
	}
	return nil
}

// APIKey returns the credential for the active provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiKey
	case "anthropic":
		return c.AnthropicKey
	default:
		return c.OpenAIKey
	}
}
