package urlstrategy

import (
	"fmt"
)

// URLStrategyType represents the type of URL strategy
type URLStrategyType string

const (
	// CDN strategy for direct CDN or bucket URLs
	StrategyTypeCDN URLStrategyType = "cdn"

	// Content-based strategy for application-routed URLs
	StrategyTypeContentBased URLStrategyType = "content-based"
)

// DefaultAPIBaseURL is used when no public base URL is configured
const DefaultAPIBaseURL = "http://localhost:8080"

// Config holds configuration for URL strategy creation
type Config struct {
	Type       URLStrategyType
	CDNBaseURL string // For CDN strategy
	APIBaseURL string // For content-based strategy
}

// NewURLStrategy creates a URL strategy based on the configuration
func NewURLStrategy(config Config) (URLStrategy, error) {
	switch config.Type {
	case StrategyTypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for CDN strategy")
		}
		return NewCDNStrategy(config.CDNBaseURL), nil

	case StrategyTypeContentBased, "":
		if config.APIBaseURL == "" {
			return nil, fmt.Errorf("API base URL is required for content-based strategy")
		}
		return NewContentBasedStrategy(config.APIBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// NewDefaultStrategy creates a sensible default URL strategy
// Uses content-based strategy as the default for development/testing
func NewDefaultStrategy(apiBaseURL string) URLStrategy {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	return NewContentBasedStrategy(apiBaseURL)
}
