package simpleblog

import (
	"context"
	"fmt"
	"io"
)

// maxCoverBytes bounds cover images read from the local media store.
const maxCoverBytes = 10 << 20

// ExportBlogPostPDF renders the post with the configured DocumentRenderer and
// returns the content type of what was written. A cover that cannot be loaded
// is logged and left out; it never fails the export.
func (s *service) ExportBlogPostPDF(ctx context.Context, id string, w io.Writer) (string, error) {
	post, err := s.GetBlogPost(ctx, id)
	if err != nil {
		return "", err
	}

	if s.renderer == nil {
		return "", &BlogPostError{PostID: id, Op: "export", Err: fmt.Errorf("%w: no renderer configured", ErrExportFailed)}
	}

	cover := s.loadCover(ctx, post)

	if err := s.renderer.RenderBlogPost(ctx, post, cover, w); err != nil {
		return "", &BlogPostError{PostID: id, Op: "export", Err: fmt.Errorf("%w: %v", ErrExportFailed, err)}
	}
	return s.renderer.ContentType(), nil
}

// loadCover reads the cover from the local media store when the URL points at
// it and otherwise asks the CoverFetcher.
func (s *service) loadCover(ctx context.Context, post *BlogPost) []byte {
	if post.Cover == "" {
		return nil
	}

	if key, ok := s.urlStrategy.ObjectKey(post.Cover); ok && s.blobStore != nil {
		data, err := s.readObject(ctx, key)
		if err == nil {
			return data
		}
		s.logger.Warn("Failed to load cover from media store, omitting", "post_id", post.ID, "key", key, "error", err)
		return nil
	}

	if s.coverFetcher == nil {
		return nil
	}
	data, err := s.coverFetcher.FetchCover(ctx, post.Cover)
	if err != nil {
		s.logger.Warn("Failed to fetch cover, omitting", "post_id", post.ID, "url", post.Cover, "error", err)
		return nil
	}
	return data
}

func (s *service) readObject(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.blobStore.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(io.LimitReader(reader, maxCoverBytes))
}
