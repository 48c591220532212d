package simpleblog

import "io"

// CreateAuthorRequest contains parameters for creating an author.
// Avatar is optional; when empty an avatar URL is derived from the name.
type CreateAuthorRequest struct {
	Name        string `json:"name,omitempty"`
	Surname     string `json:"surname,omitempty"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// AuthorPatch is a partial update of an author. Nil fields are left unchanged.
type AuthorPatch struct {
	Name        *string `json:"name,omitempty"`
	Surname     *string `json:"surname,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AuthorPatch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Email == nil && p.DateOfBirth == nil && p.Avatar == nil
}

// Apply merges the patch onto a copy of a and returns it.
func (p AuthorPatch) Apply(a Author) Author {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Surname != nil {
		a.Surname = *p.Surname
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.DateOfBirth != nil {
		a.DateOfBirth = *p.DateOfBirth
	}
	if p.Avatar != nil {
		a.Avatar = *p.Avatar
	}
	return a
}

// CreateBlogPostRequest contains parameters for creating a blog post.
type CreateBlogPostRequest struct {
	Category string          `json:"category,omitempty"`
	Title    string          `json:"title,omitempty"`
	Cover    string          `json:"cover,omitempty"`
	ReadTime *ReadTime       `json:"readTime,omitempty"`
	Author   *AuthorSnapshot `json:"author,omitempty"`
	Content  string          `json:"content,omitempty"`
}

// BlogPostPatch is a partial update of a blog post. Nil fields are left
// unchanged; ReadTime and Author replace the nested object as a whole.
type BlogPostPatch struct {
	Category *string         `json:"category,omitempty"`
	Title    *string         `json:"title,omitempty"`
	Cover    *string         `json:"cover,omitempty"`
	ReadTime *ReadTime       `json:"readTime,omitempty"`
	Author   *AuthorSnapshot `json:"author,omitempty"`
	Content  *string         `json:"content,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BlogPostPatch) IsEmpty() bool {
	return p.Category == nil && p.Title == nil && p.Cover == nil &&
		p.ReadTime == nil && p.Author == nil && p.Content == nil
}

// Apply merges the patch onto a copy of post and returns it.
func (p BlogPostPatch) Apply(post BlogPost) BlogPost {
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Cover != nil {
		post.Cover = *p.Cover
	}
	if p.ReadTime != nil {
		post.ReadTime = *p.ReadTime
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	return post
}

// BlogPostFilter narrows ListBlogPosts. Title matches as a case-insensitive
// substring; an empty filter returns every post.
type BlogPostFilter struct {
	Title string
}

// CreateCommentRequest contains parameters for adding a comment to a post.
type CreateCommentRequest struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// UploadMediaRequest contains an uploaded image for an author avatar or a
// blog post cover.
type UploadMediaRequest struct {
	ID       string
	FileName string
	MimeType string
	Reader   io.Reader
}
