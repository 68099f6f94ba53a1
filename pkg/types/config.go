package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default
	// (no client-side timeout).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "openpaper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// DiscoveryConfig holds settings for the discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SemanticScholarAPIKey is sent as x-api-key when set.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// SemanticScholarRate is the request rate allowed against Semantic
	// Scholar, in requests per second. Non-positive disables throttling.
	SemanticScholarRate float64 `json:"semantic_scholar_rate" yaml:"semantic_scholar_rate" mapstructure:"semantic_scholar_rate"`

	// SemanticScholarBurst is the token bucket size (default 1).
	SemanticScholarBurst int `json:"semantic_scholar_burst" yaml:"semantic_scholar_burst" mapstructure:"semantic_scholar_burst"`

	// OpenAlexEmail is sent as the mailto politeness parameter when set.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// StorageRoot is the directory holding per-paper folders, manifest.json
	// and unavailable.json.
	StorageRoot string `json:"storage_root" yaml:"storage_root" mapstructure:"storage_root"`

	// Delay is the pause between consecutive downloads in a batch.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}
