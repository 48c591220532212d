// Package urlstrategy maps stored media object keys to the URLs written onto
// author and blog post records, and back.
package urlstrategy

// URLStrategy defines the interface for URL generation strategies
type URLStrategy interface {
	// MediaURL returns the public URL of a stored object
	MediaURL(objectKey string) (string, error)

	// ObjectKey reverses MediaURL. ok is false for URLs this strategy did not produce.
	ObjectKey(mediaURL string) (key string, ok bool)
}

// MediaPath is the route under which the API serves stored media.
const MediaPath = "/media"
