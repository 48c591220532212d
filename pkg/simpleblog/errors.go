package simpleblog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/simple-blog/pkg/simpleblog/validation"
)

// Error types
var (
	// ErrRecordNotFound is returned by repositories for an unknown record id
	ErrRecordNotFound = errors.New("record not found")

	// ErrAuthorNotFound indicates an author was not found
	ErrAuthorNotFound = errors.New("author not found")

	// ErrBlogPostNotFound indicates a blog post was not found
	ErrBlogPostNotFound = errors.New("blog post not found")

	// ErrEmailTaken indicates another author already uses the email address
	ErrEmailTaken = errors.New("email already in use")

	// ErrNoAuthors indicates the author collection is empty
	ErrNoAuthors = errors.New("no authors to show")

	// ErrNoBlogPosts indicates the blog post collection is empty
	ErrNoBlogPosts = errors.New("no blog posts to show")

	// ErrMediaNotFound indicates a stored upload was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrInvalidUpload indicates an uploaded file was rejected
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrMediaStoreNotConfigured indicates uploads are disabled
	ErrMediaStoreNotConfigured = errors.New("media store not configured")

	// ErrExportFailed indicates a document could not be rendered
	ErrExportFailed = errors.New("export failed")
)

// IsNotFound reports whether err means the addressed resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAuthorNotFound) ||
		errors.Is(err, ErrBlogPostNotFound) ||
		errors.Is(err, ErrNoAuthors) ||
		errors.Is(err, ErrNoBlogPosts) ||
		errors.Is(err, ErrMediaNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// ValidationError carries every failed field rule of a request.
type ValidationError struct {
	Op     string
	Errors []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Op, strings.Join(parts, "; "))
}

// newValidationError returns nil when result holds no failures.
func newValidationError(op string, result validation.Result) error {
	if result.Valid() {
		return nil
	}
	return &ValidationError{Op: op, Errors: result.Errors}
}

// AuthorError represents an error related to author operations
type AuthorError struct {
	AuthorID string
	Op       string
	Err      error
}

func (e *AuthorError) Error() string {
	return fmt.Sprintf("author operation %s failed for author %s: %v", e.Op, e.AuthorID, e.Err)
}

func (e *AuthorError) Unwrap() error {
	return e.Err
}

// BlogPostError represents an error related to blog post operations
type BlogPostError struct {
	PostID string
	Op     string
	Err    error
}

func (e *BlogPostError) Error() string {
	return fmt.Sprintf("blog post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *BlogPostError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to repository or media storage
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
