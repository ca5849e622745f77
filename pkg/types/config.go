package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "content-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AIProvider identifies the text-generation backend.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderClaude AIProvider = "claude"
	ProviderStub   AIProvider = "stub"
)

// AIConfig holds settings for the Generative AI API.
type AIConfig struct {
	// Provider selects openai, claude, or stub (default openai).
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the AI model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint, for OpenAI-compatible services.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the length of each completion (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout is the per-request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// SourceProvider identifies the content source behind the source gateway.
type SourceProvider string

const (
	SourceApify    SourceProvider = "apify"
	SourceMastodon SourceProvider = "mastodon"
	SourceFeed     SourceProvider = "feed"
)

// ApifyConfig configures the Apify actor-based LinkedIn source.
type ApifyConfig struct {
	Token        string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	SearchActor  string `json:"search_actor" yaml:"search_actor" mapstructure:"search_actor"`
	ProfileActor string `json:"profile_actor" yaml:"profile_actor" mapstructure:"profile_actor"`
}

// MastodonConfig configures the Mastodon source.
type MastodonConfig struct {
	// Instance is the base URL of the server (e.g. "https://mastodon.social").
	Instance    string `json:"instance" yaml:"instance" mapstructure:"instance"`
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty" mapstructure:"access_token"`
}

// SourceConfig holds settings for the source gateway.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects apify, mastodon, or feed (default apify).
	Provider SourceProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	Apify    ApifyConfig    `json:"apify" yaml:"apify" mapstructure:"apify"`
	Mastodon MastodonConfig `json:"mastodon" yaml:"mastodon" mapstructure:"mastodon"`

	// Feeds are the RSS/Atom feeds searched by keyword in feed mode.
	Feeds []string `json:"feeds,omitempty" yaml:"feeds,omitempty" mapstructure:"feeds"`

	// FetchArticles fetches the linked page for feed items that carry no body.
	FetchArticles bool `json:"fetch_articles" yaml:"fetch_articles" mapstructure:"fetch_articles"`
}

// NewsConfig holds settings for news lookups in research runs.
type NewsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Language is the Google News edition: es, en, fr, pt (default es).
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// MaxItems is the number of headlines gathered per post (default 3).
	MaxItems int `json:"max_items" yaml:"max_items" mapstructure:"max_items"`
}

// StoreConfig holds settings for the historical store.
type StoreConfig struct {
	// Dir is the directory holding content.db and exports (default "data").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups all component configurations.
type Config struct {
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
	AI     AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Source SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	News   NewsConfig   `json:"news" yaml:"news" mapstructure:"news"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`

	// TenantsFile is the YAML file listing tenants (default "tenants.yaml").
	TenantsFile string `json:"tenants_file" yaml:"tenants_file" mapstructure:"tenants_file"`
}
