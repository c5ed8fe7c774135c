package types

import "time"

// HTTPConfig holds shared HTTP settings for commands that fetch pages.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pfcards/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScrapeConfig holds settings for the item and spell commands.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// AllowedPrefixes lists the URL prefixes the scraper accepts.
	// The extraction rules are written against the Archives of
	// Nethys page layout, so anything else is rejected up front.
	AllowedPrefixes []string `json:"allowed_prefixes" yaml:"allowed_prefixes"`
}

// LibraryConfig holds settings for the card library commands.
type LibraryConfig struct {
	// Dir is the base directory for cards (contains items/, spells/,
	// index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
