package config

import (
	"fmt"
	"strings"

	"docqna/pkg/finance"
)

// Config is the full docqna configuration. It is loaded once at startup
// and passed by reference into setup; nothing reads settings ambiently.
type Config struct {
	// DataDir roots the derived defaults (cached prompts, transcripts, log file).
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	Storage   StorageConfig    `json:"storage" mapstructure:"storage"`
	Provider  ProviderConfig   `json:"provider" mapstructure:"provider"`
	Inference InferenceConfig  `json:"inference" mapstructure:"inference"`
	Prompt    PromptConfig     `json:"prompt" mapstructure:"prompt"`
	Finance   FinanceConfig    `json:"finance" mapstructure:"finance"`
	Context   []ContextSection `json:"context" mapstructure:"context"`
	Cache     CacheConfig      `json:"cache" mapstructure:"cache"`
	Logging   LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// StorageConfig holds filesystem locations.
type StorageConfig struct {
	DocumentsPath     string `json:"documents_path" mapstructure:"documents_path"`
	CachedPromptsPath string `json:"cached_prompts_path" mapstructure:"cached_prompts_path"`
	TranscriptsPath   string `json:"transcripts_path" mapstructure:"transcripts_path"`
}

// ProviderConfig selects the inference provider.
type ProviderConfig struct {
	Name    string `json:"name" mapstructure:"name"` // openai, anthropic
	BaseURL string `json:"base_url" mapstructure:"base_url"`
	APIKey  string `json:"api_key" mapstructure:"api_key"`
}

// InferenceConfig holds the arguments forwarded on every completion call.
type InferenceConfig struct {
	Model       string  `json:"model" mapstructure:"model"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// PromptConfig holds session seeding options.
type PromptConfig struct {
	// DefaultMessage is an optional assistant greeting appended after the
	// system prompt. Empty means no greeting.
	DefaultMessage string `json:"default_message" mapstructure:"default_message"`
}

// FinanceConfig holds market-data defaults for finance mode.
type FinanceConfig struct {
	Tickers []string `json:"tickers" mapstructure:"tickers"`
	Period  string   `json:"period" mapstructure:"period"`
	BaseURL string   `json:"base_url" mapstructure:"base_url"`
}

// ContextSection is an extra prompt section appended after the document
// blob. Static sections carry content; REST sections carry a URL that is
// fetched when the session is built.
type ContextSection struct {
	ID          string            `json:"id" mapstructure:"id"`
	Description string            `json:"description" mapstructure:"description"`
	Content     string            `json:"content" mapstructure:"content"`
	URL         string            `json:"url" mapstructure:"url"`
	Method      string            `json:"method" mapstructure:"method"`
	Headers     map[string]string `json:"headers" mapstructure:"headers"`
}

// CacheConfig toggles prompt caching.
type CacheConfig struct {
	Prompts bool `json:"prompts" mapstructure:"prompts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DocumentsPath: "documents",
		},
		Provider: ProviderConfig{
			Name: "openai",
		},
		Inference: InferenceConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Finance: FinanceConfig{
			Period: "1mo",
		},
		Cache: CacheConfig{
			Prompts: true,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    true,
			Redaction: true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("provider: invalid name %q (must be: openai, anthropic)", c.Provider.Name)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider: api_key is required (set provider.api_key or DOCQNA_API_KEY)")
	}

	if c.Inference.Model == "" {
		return fmt.Errorf("inference: model is required")
	}
	if c.Inference.MaxTokens < 0 {
		return fmt.Errorf("inference: max_tokens must be >= 0, got %d", c.Inference.MaxTokens)
	}
	if c.Inference.Temperature < 0 || c.Inference.Temperature > 2 {
		return fmt.Errorf("inference: temperature must be between 0 and 2, got %g", c.Inference.Temperature)
	}

	if c.Finance.Period != "" && !finance.ValidPeriod(c.Finance.Period) {
		return fmt.Errorf("finance: unsupported period %q (supported: %s)",
			c.Finance.Period, strings.Join(finance.Periods(), ", "))
	}

	for i, section := range c.Context {
		if strings.TrimSpace(section.ID) == "" {
			return fmt.Errorf("context section %d: id is required", i)
		}
		hasContent := section.Content != ""
		hasURL := section.URL != ""
		switch {
		case hasContent && hasURL:
			return fmt.Errorf("context section %s: content and url are mutually exclusive", section.ID)
		case !hasContent && !hasURL:
			return fmt.Errorf("context section %s: content or url is required", section.ID)
		}
	}

	return nil
}
