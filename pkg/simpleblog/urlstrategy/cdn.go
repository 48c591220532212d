package urlstrategy

import (
	"fmt"
	"strings"
)

// CDNStrategy generates URLs that point directly at a CDN or public bucket
// fronting the blob store: {CDNBaseURL}/{key}
type CDNStrategy struct {
	CDNBaseURL string // e.g., "https://cdn.example.com"
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(cdnBaseURL string) *CDNStrategy {
	// Ensure cdnBaseURL doesn't have trailing slash
	cdnBaseURL = strings.TrimSuffix(cdnBaseURL, "/")
	return &CDNStrategy{
		CDNBaseURL: cdnBaseURL,
	}
}

// MediaURL creates a direct CDN URL for the object
func (s *CDNStrategy) MediaURL(objectKey string) (string, error) {
	if s.CDNBaseURL == "" {
		return "", fmt.Errorf("CDN base URL not configured")
	}
	if objectKey == "" {
		return "", fmt.Errorf("object key is required")
	}
	return fmt.Sprintf("%s/%s", s.CDNBaseURL, objectKey), nil
}

func (s *CDNStrategy) ObjectKey(mediaURL string) (string, bool) {
	return trimBase(mediaURL, s.CDNBaseURL+"/")
}
