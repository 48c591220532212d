package simpleblog

import (
	"context"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful when nothing needs to observe mutations, and in tests
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// AuthorCreated does nothing and returns nil
func (n *NoopEventSink) AuthorCreated(ctx context.Context, author *Author) error {
	return nil
}

// AuthorUpdated does nothing and returns nil
func (n *NoopEventSink) AuthorUpdated(ctx context.Context, author *Author) error {
	return nil
}

// AuthorDeleted does nothing and returns nil
func (n *NoopEventSink) AuthorDeleted(ctx context.Context, authorID string) error {
	return nil
}

// BlogPostCreated does nothing and returns nil
func (n *NoopEventSink) BlogPostCreated(ctx context.Context, post *BlogPost) error {
	return nil
}

// BlogPostUpdated does nothing and returns nil
func (n *NoopEventSink) BlogPostUpdated(ctx context.Context, post *BlogPost) error {
	return nil
}

// BlogPostDeleted does nothing and returns nil
func (n *NoopEventSink) BlogPostDeleted(ctx context.Context, postID string) error {
	return nil
}

// CommentAdded does nothing and returns nil
func (n *NoopEventSink) CommentAdded(ctx context.Context, postID string, comment *Comment) error {
	return nil
}

// CommentDeleted does nothing and returns nil
func (n *NoopEventSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	return nil
}

// MediaUploaded does nothing and returns nil
func (n *NoopEventSink) MediaUploaded(ctx context.Context, collection Collection, id, objectKey string) error {
	return nil
}
