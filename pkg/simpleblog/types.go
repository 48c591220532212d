package simpleblog

import (
	"time"
)

// Collection names a persisted collection of records.
type Collection string

// Collections managed by the service.
const (
	CollectionAuthors   Collection = "authors"
	CollectionBlogPosts Collection = "blogPosts"
)

// Author represents a blog author.
type Author struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Surname     string     `json:"surname"`
	Email       string     `json:"email"`
	DateOfBirth string     `json:"dateOfBirth"`
	Avatar      string     `json:"avatar"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// FullName returns "Name Surname".
func (a *Author) FullName() string {
	if a.Surname == "" {
		return a.Name
	}
	return a.Name + " " + a.Surname
}

// ReadTime is the estimated reading time of a post.
type ReadTime struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// AuthorSnapshot is the author information embedded in a blog post.
// It is a copy taken at write time, not a reference to an Author record.
type AuthorSnapshot struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// BlogPost represents a blog post and its comments.
type BlogPost struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Title     string         `json:"title"`
	Cover     string         `json:"cover,omitempty"`
	ReadTime  ReadTime       `json:"readTime"`
	Author    AuthorSnapshot `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
	Comments  []Comment      `json:"comments"`
}

// Comment is owned by exactly one blog post.
type Comment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is a single persisted entry of a collection. Data holds the JSON
// encoding of the entity and always carries the same id under the "id" key.
type Record struct {
	ID   string
	Data []byte
}

// ObjectMeta contains metadata about an object in media storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
