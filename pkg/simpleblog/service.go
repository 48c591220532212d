package simpleblog

import (
	"context"
	"io"
)

// Service defines the main interface for the simple-blog library
type Service interface {
	// Author operations
	ListAuthors(ctx context.Context) ([]*Author, error)
	GetAuthor(ctx context.Context, id string) (*Author, error)
	CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error)
	UpdateAuthor(ctx context.Context, id string, patch AuthorPatch) (*Author, error)
	DeleteAuthor(ctx context.Context, id string) error
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UploadAvatar(ctx context.Context, req UploadMediaRequest) (*Author, error)
	ListAuthorBlogPosts(ctx context.Context, id string) ([]*BlogPost, error)

	// Blog post operations
	ListBlogPosts(ctx context.Context, filter BlogPostFilter) ([]*BlogPost, error)
	GetBlogPost(ctx context.Context, id string) (*BlogPost, error)
	CreateBlogPost(ctx context.Context, req CreateBlogPostRequest) (*BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, patch BlogPostPatch) (*BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error
	UploadCover(ctx context.Context, req UploadMediaRequest) (*BlogPost, error)

	// Comment operations
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	AddComment(ctx context.Context, postID string, req CreateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	// Media and export
	DownloadMedia(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMeta, error)
	ExportBlogPostPDF(ctx context.Context, id string, w io.Writer) (contentType string, err error)
}
