package urlstrategy

import (
	"fmt"
	"strings"
)

// ContentBasedStrategy generates URLs served by the application itself
// ({APIBaseURL}/media/{key}), so any blob store backend can sit behind it.
type ContentBasedStrategy struct {
	APIBaseURL string // e.g., "https://api.example.com" or "http://localhost:8080"
}

// NewContentBasedStrategy creates a new content-based URL strategy
func NewContentBasedStrategy(apiBaseURL string) *ContentBasedStrategy {
	// Ensure apiBaseURL doesn't have trailing slash
	apiBaseURL = strings.TrimSuffix(apiBaseURL, "/")
	return &ContentBasedStrategy{
		APIBaseURL: apiBaseURL,
	}
}

// MediaURL creates an application-routed media URL
func (s *ContentBasedStrategy) MediaURL(objectKey string) (string, error) {
	if s.APIBaseURL == "" {
		return "", fmt.Errorf("API base URL not configured")
	}
	if objectKey == "" {
		return "", fmt.Errorf("object key is required")
	}
	return fmt.Sprintf("%s%s/%s", s.APIBaseURL, MediaPath, objectKey), nil
}

func (s *ContentBasedStrategy) ObjectKey(mediaURL string) (string, bool) {
	return trimBase(mediaURL, s.APIBaseURL+MediaPath+"/")
}

// trimBase returns the remainder of u after prefix, without query or fragment.
func trimBase(u, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(u, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", false
	}
	return key, true
}
