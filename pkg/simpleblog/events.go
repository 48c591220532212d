package simpleblog

import (
	"context"
	"log/slog"
)

// LogEventSink writes every event to a structured logger at info level.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs to logger, or slog.Default when nil.
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger.With("component", "events")}
}

func (l *LogEventSink) AuthorCreated(ctx context.Context, author *Author) error {
	l.logger.InfoContext(ctx, "author created", "author_id", author.ID, "email", author.Email)
	return nil
}

func (l *LogEventSink) AuthorUpdated(ctx context.Context, author *Author) error {
	l.logger.InfoContext(ctx, "author updated", "author_id", author.ID)
	return nil
}

func (l *LogEventSink) AuthorDeleted(ctx context.Context, authorID string) error {
	l.logger.InfoContext(ctx, "author deleted", "author_id", authorID)
	return nil
}

func (l *LogEventSink) BlogPostCreated(ctx context.Context, post *BlogPost) error {
	l.logger.InfoContext(ctx, "blog post created", "post_id", post.ID, "title", post.Title)
	return nil
}

func (l *LogEventSink) BlogPostUpdated(ctx context.Context, post *BlogPost) error {
	l.logger.InfoContext(ctx, "blog post updated", "post_id", post.ID)
	return nil
}

func (l *LogEventSink) BlogPostDeleted(ctx context.Context, postID string) error {
	l.logger.InfoContext(ctx, "blog post deleted", "post_id", postID)
	return nil
}

func (l *LogEventSink) CommentAdded(ctx context.Context, postID string, comment *Comment) error {
	l.logger.InfoContext(ctx, "comment added", "post_id", postID, "comment_id", comment.ID)
	return nil
}

func (l *LogEventSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	l.logger.InfoContext(ctx, "comment deleted", "post_id", postID, "comment_id", commentID)
	return nil
}

func (l *LogEventSink) MediaUploaded(ctx context.Context, collection Collection, id, objectKey string) error {
	l.logger.InfoContext(ctx, "media uploaded", "collection", string(collection), "id", id, "key", objectKey)
	return nil
}
