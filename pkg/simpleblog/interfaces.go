package simpleblog

import (
	"context"
	"io"
)

// Repository defines the interface for collection persistence.
//
// Load and Save operate on a whole collection in insertion order. Get, Put,
// Update and Delete address a single record by id. Update runs fn with
// exclusive access to the record so concurrent read-modify-write cycles on the
// same record do not lose writes.
type Repository interface {
	Load(ctx context.Context, collection Collection) ([]Record, error)
	Save(ctx context.Context, collection Collection, records []Record) error

	Get(ctx context.Context, collection Collection, id string) (*Record, error)
	Put(ctx context.Context, collection Collection, record Record) error
	Update(ctx context.Context, collection Collection, id string, fn func(*Record) error) (*Record, error)
	Delete(ctx context.Context, collection Collection, id string) (bool, error)

	Close() error
}

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// URLStrategy maps media object keys to the URLs stored on records.
type URLStrategy interface {
	// MediaURL returns the public URL of a stored object
	MediaURL(objectKey string) (string, error)

	// ObjectKey reverses MediaURL. ok is false for URLs this strategy did not produce.
	ObjectKey(mediaURL string) (key string, ok bool)
}

// EventSink defines the interface for event handling
type EventSink interface {
	AuthorCreated(ctx context.Context, author *Author) error
	AuthorUpdated(ctx context.Context, author *Author) error
	AuthorDeleted(ctx context.Context, authorID string) error

	BlogPostCreated(ctx context.Context, post *BlogPost) error
	BlogPostUpdated(ctx context.Context, post *BlogPost) error
	BlogPostDeleted(ctx context.Context, postID string) error

	CommentAdded(ctx context.Context, postID string, comment *Comment) error
	CommentDeleted(ctx context.Context, postID, commentID string) error

	MediaUploaded(ctx context.Context, collection Collection, id, objectKey string) error
}

// CoverFetcher retrieves remote cover images for document export.
type CoverFetcher interface {
	FetchCover(ctx context.Context, coverURL string) ([]byte, error)
}

// DocumentRenderer renders a blog post into a binary document. cover holds the
// raw image bytes or nil when the post has no usable cover.
type DocumentRenderer interface {
	ContentType() string
	RenderBlogPost(ctx context.Context, post *BlogPost, cover []byte, w io.Writer) error
}
