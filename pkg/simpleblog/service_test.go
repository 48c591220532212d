package simpleblog_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/jsonfile"
	repomemory "github.com/tendant/simple-blog/pkg/simpleblog/repo/memory"
	"github.com/tendant/simple-blog/pkg/simpleblog/storage/memory"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
)

// recordingSink captures event names in delivery order.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (r *recordingSink) add(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
	if r.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func (r *recordingSink) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingSink) AuthorCreated(ctx context.Context, author *simpleblog.Author) error {
	return r.add("author.created")
}
func (r *recordingSink) AuthorUpdated(ctx context.Context, author *simpleblog.Author) error {
	return r.add("author.updated")
}
func (r *recordingSink) AuthorDeleted(ctx context.Context, authorID string) error {
	return r.add("author.deleted")
}
func (r *recordingSink) BlogPostCreated(ctx context.Context, post *simpleblog.BlogPost) error {
	return r.add("blogpost.created")
}
func (r *recordingSink) BlogPostUpdated(ctx context.Context, post *simpleblog.BlogPost) error {
	return r.add("blogpost.updated")
}
func (r *recordingSink) BlogPostDeleted(ctx context.Context, postID string) error {
	return r.add("blogpost.deleted")
}
func (r *recordingSink) CommentAdded(ctx context.Context, postID string, comment *simpleblog.Comment) error {
	return r.add("comment.added")
}
func (r *recordingSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	return r.add("comment.deleted")
}
func (r *recordingSink) MediaUploaded(ctx context.Context, collection simpleblog.Collection, id, objectKey string) error {
	return r.add("media.uploaded")
}

type fakeRenderer struct {
	post  *simpleblog.BlogPost
	cover []byte
	err   error
}

func (f *fakeRenderer) ContentType() string { return "application/pdf" }

func (f *fakeRenderer) RenderBlogPost(ctx context.Context, post *simpleblog.BlogPost, cover []byte, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	f.post = post
	f.cover = cover
	_, err := io.WriteString(w, "%PDF-fake "+post.Title)
	return err
}

type fakeFetcher struct {
	urls []string
	data []byte
	err  error
}

func (f *fakeFetcher) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	f.urls = append(f.urls, coverURL)
	return f.data, f.err
}

type testEnv struct {
	svc   simpleblog.Service
	repo  simpleblog.Repository
	store *memory.Backend
	sink  *recordingSink
}

func newTestService(t *testing.T, opts ...simpleblog.Option) testEnv {
	t.Helper()
	env := testEnv{
		repo:  repomemory.New(),
		store: memory.New(),
		sink:  &recordingSink{},
	}
	base := []simpleblog.Option{
		simpleblog.WithRepository(env.repo),
		simpleblog.WithBlobStore(env.store),
		simpleblog.WithEventSink(env.sink),
	}
	svc, err := simpleblog.New(append(base, opts...)...)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func authorRequest() simpleblog.CreateAuthorRequest {
	return simpleblog.CreateAuthorRequest{
		Name:        "Ada",
		Surname:     "Lovelace",
		Email:       "ada@example.com",
		DateOfBirth: "1815-12-10",
	}
}

func postRequest(author string) simpleblog.CreateBlogPostRequest {
	return simpleblog.CreateBlogPostRequest{
		Category: "History",
		Title:    "Notes on the Analytical Engine",
		ReadTime: &simpleblog.ReadTime{Value: 12, Unit: "minute"},
		Author:   &simpleblog.AuthorSnapshot{Name: author, Avatar: "https://example.com/a.png"},
		Content:  "<p>The engine weaves algebraic patterns.</p>",
	}
}

func strPtr(s string) *string { return &s }

func TestNewRequiresRepository(t *testing.T) {
	_, err := simpleblog.New()
	assert.Error(t, err)
}

func TestAuthorLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	_, err := env.svc.ListAuthors(ctx)
	assert.ErrorIs(t, err, simpleblog.ErrNoAuthors)

	created, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Contains(t, created.Avatar, "name=Ada+Lovelace")

	got, err := env.svc.GetAuthor(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	updated, err := env.svc.UpdateAuthor(ctx, created.ID, simpleblog.AuthorPatch{Surname: strPtr("King")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "King", updated.Surname)
	require.NotNil(t, updated.UpdatedAt)

	authors, err := env.svc.ListAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "King", authors[0].Surname)

	require.NoError(t, env.svc.DeleteAuthor(ctx, created.ID))
	_, err = env.svc.GetAuthor(ctx, created.ID)
	assert.ErrorIs(t, err, simpleblog.ErrAuthorNotFound)
	assert.True(t, simpleblog.IsNotFound(err))

	// deleting again is not an error
	require.NoError(t, env.svc.DeleteAuthor(ctx, created.ID))

	assert.Equal(t, []string{"author.created", "author.updated", "author.deleted"}, env.sink.Events())
}

func TestCreateAuthorValidation(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.CreateAuthor(context.Background(), simpleblog.CreateAuthorRequest{Email: "nope"})
	var verr *simpleblog.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "surname", "email", "dateOfBirth"}, fields)
	assert.Empty(t, env.sink.Events())
}

func TestUpdateAuthorMissing(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.UpdateAuthor(context.Background(), "missing", simpleblog.AuthorPatch{Name: strPtr("X")})
	assert.ErrorIs(t, err, simpleblog.ErrAuthorNotFound)

	var authorErr *simpleblog.AuthorError
	require.ErrorAs(t, err, &authorErr)
	assert.Equal(t, "missing", authorErr.AuthorID)
}

func TestCheckEmailExists(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	_, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)

	exists, err := env.svc.CheckEmailExists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.svc.CheckEmailExists(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = env.svc.CheckEmailExists(ctx, "")
	var verr *simpleblog.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUniqueEmails(t *testing.T) {
	ctx := context.Background()

	env := newTestService(t)
	_, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)
	_, err = env.svc.CreateAuthor(ctx, authorRequest())
	assert.NoError(t, err, "duplicates are allowed unless enabled")

	env = newTestService(t, simpleblog.WithUniqueEmails(true))
	first, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)
	_, err = env.svc.CreateAuthor(ctx, authorRequest())
	assert.ErrorIs(t, err, simpleblog.ErrEmailTaken)

	other := authorRequest()
	other.Email = "grace@example.com"
	second, err := env.svc.CreateAuthor(ctx, other)
	require.NoError(t, err)

	_, err = env.svc.UpdateAuthor(ctx, second.ID, simpleblog.AuthorPatch{Email: strPtr("ada@example.com")})
	assert.ErrorIs(t, err, simpleblog.ErrEmailTaken)

	// keeping your own address is fine
	_, err = env.svc.UpdateAuthor(ctx, first.ID, simpleblog.AuthorPatch{Email: strPtr("ada@example.com")})
	assert.NoError(t, err)
}

func TestEmptyListNotFoundDisabled(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, simpleblog.WithEmptyListNotFound(false))

	authors, err := env.svc.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)

	posts, err := env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBlogPostLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	_, err := env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{})
	assert.ErrorIs(t, err, simpleblog.ErrNoBlogPosts)

	post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada Lovelace"))
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)

	updated, err := env.svc.UpdateBlogPost(ctx, post.ID, simpleblog.BlogPostPatch{
		ReadTime: &simpleblog.ReadTime{Value: 3, Unit: "minute"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ReadTime.Value)
	assert.Equal(t, post.Title, updated.Title)
	assert.Equal(t, post.ID, updated.ID)

	require.NoError(t, env.svc.DeleteBlogPost(ctx, post.ID))
	_, err = env.svc.GetBlogPost(ctx, post.ID)
	assert.ErrorIs(t, err, simpleblog.ErrBlogPostNotFound)
	require.NoError(t, env.svc.DeleteBlogPost(ctx, post.ID))

	assert.Equal(t, []string{"blogpost.created", "blogpost.updated", "blogpost.deleted"}, env.sink.Events())
}

func TestUpdateBlogPostTargetsResolvedRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	firstReq := postRequest("Ada Lovelace")
	firstReq.Title = "First"
	first, err := env.svc.CreateBlogPost(ctx, firstReq)
	require.NoError(t, err)

	secondReq := postRequest("Grace Hopper")
	secondReq.Title = "Second"
	second, err := env.svc.CreateBlogPost(ctx, secondReq)
	require.NoError(t, err)

	updated, err := env.svc.UpdateBlogPost(ctx, second.ID, simpleblog.BlogPostPatch{Category: strPtr("Computing")})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, "Second", updated.Title)
	assert.Equal(t, "Grace Hopper", updated.Author.Name)
	assert.Equal(t, "Computing", updated.Category)

	gotFirst, err := env.svc.GetBlogPost(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", gotFirst.Title)
	assert.Equal(t, "Ada Lovelace", gotFirst.Author.Name)
	assert.Equal(t, "History", gotFirst.Category)
	assert.Nil(t, gotFirst.UpdatedAt)

	gotSecond, err := env.svc.GetBlogPost(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", gotSecond.Title)
	assert.Equal(t, "Computing", gotSecond.Category)

	// deleting an absent id leaves the collection as it was
	require.NoError(t, env.svc.DeleteBlogPost(ctx, "missing"))
	posts, err := env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestJSONFileStoreWithNumericIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authors.json"), []byte(`[
  {"id": 1, "name": "Ada", "surname": "Lovelace", "email": "ada@example.com", "dateOfBirth": "1815-12-10", "avatar": "https://example.com/a.png"}
]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogPosts.json"), []byte(`[
  {"_id": 7, "category": "History", "title": "Notes", "readTime": {"value": 5, "unit": "minute"}, "author": {"name": "Ada", "avatar": "https://example.com/a.png"}, "content": "text"}
]`), 0644))

	repo, err := jsonfile.New(jsonfile.Config{Dir: dir})
	require.NoError(t, err)
	svc, err := simpleblog.New(simpleblog.WithRepository(repo))
	require.NoError(t, err)

	authors, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "1", authors[0].ID)

	author, err := svc.GetAuthor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", author.Email)

	exists, err := svc.CheckEmailExists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	post, err := svc.GetBlogPost(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Notes", post.Title)
	assert.Empty(t, post.Comments)

	comment, err := svc.AddComment(ctx, "7", simpleblog.CreateCommentRequest{Name: "Reader", Message: "hi"})
	require.NoError(t, err)
	comments, err := svc.ListComments(ctx, "7")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)

	posts, err := svc.ListAuthorBlogPosts(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestCreateBlogPostValidation(t *testing.T) {
	env := newTestService(t)

	req := postRequest("Ada")
	req.ReadTime = &simpleblog.ReadTime{Value: -1, Unit: "minute"}
	req.Title = ""
	_, err := env.svc.CreateBlogPost(context.Background(), req)

	var verr *simpleblog.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "readTime.value")
}

func TestListBlogPostsTitleFilter(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	first := postRequest("Ada")
	first.Title = "Loops and Cards"
	second := postRequest("Ada")
	second.Title = "On Bernoulli Numbers"
	for _, req := range []simpleblog.CreateBlogPostRequest{first, second} {
		_, err := env.svc.CreateBlogPost(ctx, req)
		require.NoError(t, err)
	}

	posts, err := env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{Title: "bernoulli"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "On Bernoulli Numbers", posts[0].Title)

	all, err := env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Loops and Cards", all[0].Title)

	_, err = env.svc.ListBlogPosts(ctx, simpleblog.BlogPostFilter{Title: "babbage"})
	assert.ErrorIs(t, err, simpleblog.ErrNoBlogPosts)
}

func TestListAuthorBlogPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	author, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)

	for _, name := range []string{"Ada Lovelace", "ada", "Grace Hopper", "  ada   LOVELACE "} {
		_, err := env.svc.CreateBlogPost(ctx, postRequest(name))
		require.NoError(t, err)
	}

	posts, err := env.svc.ListAuthorBlogPosts(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	_, err = env.svc.ListAuthorBlogPosts(ctx, "missing")
	assert.ErrorIs(t, err, simpleblog.ErrAuthorNotFound)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
	require.NoError(t, err)

	var ids []string
	for _, msg := range []string{"first", "second", "third"} {
		c, err := env.svc.AddComment(ctx, post.ID, simpleblog.CreateCommentRequest{Name: "Reader", Message: msg})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	require.NoError(t, env.svc.DeleteComment(ctx, post.ID, ids[1]))
	// unknown comment ids are ignored
	require.NoError(t, env.svc.DeleteComment(ctx, post.ID, "missing"))

	comments, err := env.svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Message)
	assert.Equal(t, "third", comments[1].Message)

	_, err = env.svc.AddComment(ctx, post.ID, simpleblog.CreateCommentRequest{Name: "Reader"})
	var verr *simpleblog.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = env.svc.AddComment(ctx, "missing", simpleblog.CreateCommentRequest{Name: "Reader", Message: "hi"})
	assert.ErrorIs(t, err, simpleblog.ErrBlogPostNotFound)
	assert.ErrorIs(t, env.svc.DeleteComment(ctx, "missing", ids[0]), simpleblog.ErrBlogPostNotFound)
	_, err = env.svc.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, simpleblog.ErrBlogPostNotFound)

	assert.Equal(t, []string{
		"blogpost.created",
		"comment.added", "comment.added", "comment.added",
		"comment.deleted",
	}, env.sink.Events())
}

func TestConcurrentCommentsAreNotLost(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.AddComment(ctx, post.ID, simpleblog.CreateCommentRequest{Name: "Reader", Message: "hi"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	comments, err := env.svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, n)
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	author, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)

	updated, err := env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{
		ID:       author.ID,
		FileName: "me.png",
		Reader:   bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/authors/"+author.ID+".png", updated.Avatar)
	assert.Equal(t, []string{"authors/" + author.ID + ".png"}, env.store.Keys())

	reader, meta, err := env.svc.DownloadMedia(ctx, "authors/"+author.ID+".png")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", meta.ContentType)

	// a different extension replaces the previous object
	_, err = env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{
		ID:       author.ID,
		FileName: "me.gif",
		Reader:   bytes.NewReader(gifHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"authors/" + author.ID + ".gif"}, env.store.Keys())

	require.NoError(t, env.svc.DeleteAuthor(ctx, author.ID))
	assert.Empty(t, env.store.Keys())
}

func TestUploadRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	_, err := env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{ID: "missing", Reader: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, simpleblog.ErrAuthorNotFound)

	author, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)

	_, err = env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{ID: author.ID, FileName: "a.txt", Reader: bytes.NewReader([]byte("plain text"))})
	assert.ErrorIs(t, err, simpleblog.ErrInvalidUpload)

	_, err = env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{ID: author.ID, Reader: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, simpleblog.ErrInvalidUpload)

	_, err = env.svc.UploadAvatar(ctx, simpleblog.UploadMediaRequest{ID: author.ID})
	assert.ErrorIs(t, err, simpleblog.ErrInvalidUpload)

	assert.Empty(t, env.store.Keys())
	assert.Equal(t, []string{"author.created"}, env.sink.Events())
}

func TestUploadWithoutBlobStore(t *testing.T) {
	ctx := context.Background()
	svc, err := simpleblog.New(simpleblog.WithRepository(repomemory.New()))
	require.NoError(t, err)

	post, err := svc.CreateBlogPost(ctx, postRequest("Ada"))
	require.NoError(t, err)

	_, err = svc.UploadCover(ctx, simpleblog.UploadMediaRequest{ID: post.ID, Reader: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, simpleblog.ErrMediaStoreNotConfigured)

	_, _, err = svc.DownloadMedia(ctx, "blogPosts/"+post.ID+".png")
	assert.ErrorIs(t, err, simpleblog.ErrMediaStoreNotConfigured)
}

func TestUploadCover(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
	require.NoError(t, err)

	updated, err := env.svc.UploadCover(ctx, simpleblog.UploadMediaRequest{
		ID:       post.ID,
		FileName: "cover.png",
		Reader:   bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/blogPosts/"+post.ID+".png", updated.Cover)

	got, err := env.svc.GetBlogPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Cover, got.Cover)

	require.NoError(t, env.svc.DeleteBlogPost(ctx, post.ID))
	assert.Empty(t, env.store.Keys())
	assert.Equal(t, []string{"blogpost.created", "media.uploaded", "blogpost.deleted"}, env.sink.Events())
}

func TestDownloadMediaRejectsBadKeys(t *testing.T) {
	env := newTestService(t)

	for _, key := range []string{"", "/etc/passwd", "../secret", "authors/../x", "a\\b", "authors//x"} {
		_, _, err := env.svc.DownloadMedia(context.Background(), key)
		assert.ErrorIs(t, err, simpleblog.ErrMediaNotFound, key)
	}
	_, _, err := env.svc.DownloadMedia(context.Background(), "authors/unknown.png")
	assert.ErrorIs(t, err, simpleblog.ErrMediaNotFound)
}

func TestExportBlogPost(t *testing.T) {
	ctx := context.Background()

	t.Run("no renderer", func(t *testing.T) {
		env := newTestService(t)
		post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
		require.NoError(t, err)

		_, err = env.svc.ExportBlogPostPDF(ctx, post.ID, io.Discard)
		assert.ErrorIs(t, err, simpleblog.ErrExportFailed)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestService(t, simpleblog.WithExporter(&fakeRenderer{}))
		_, err := env.svc.ExportBlogPostPDF(ctx, "missing", io.Discard)
		assert.ErrorIs(t, err, simpleblog.ErrBlogPostNotFound)
	})

	t.Run("missing post without renderer", func(t *testing.T) {
		env := newTestService(t)
		_, err := env.svc.ExportBlogPostPDF(ctx, "missing", io.Discard)
		assert.ErrorIs(t, err, simpleblog.ErrBlogPostNotFound)
		assert.NotErrorIs(t, err, simpleblog.ErrExportFailed)
	})

	t.Run("local cover", func(t *testing.T) {
		renderer := &fakeRenderer{}
		fetcher := &fakeFetcher{}
		env := newTestService(t, simpleblog.WithExporter(renderer), simpleblog.WithCoverFetcher(fetcher))
		post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
		require.NoError(t, err)
		_, err = env.svc.UploadCover(ctx, simpleblog.UploadMediaRequest{ID: post.ID, FileName: "c.png", Reader: bytes.NewReader(pngHeader)})
		require.NoError(t, err)

		var buf bytes.Buffer
		contentType, err := env.svc.ExportBlogPostPDF(ctx, post.ID, &buf)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", contentType)
		assert.Equal(t, "%PDF-fake "+post.Title, buf.String())
		assert.Equal(t, pngHeader, renderer.cover)
		assert.Empty(t, fetcher.urls)
	})

	t.Run("remote cover", func(t *testing.T) {
		renderer := &fakeRenderer{}
		fetcher := &fakeFetcher{data: []byte("remote")}
		env := newTestService(t, simpleblog.WithExporter(renderer), simpleblog.WithCoverFetcher(fetcher))
		req := postRequest("Ada")
		req.Cover = "https://images.example.com/cover.jpg"
		post, err := env.svc.CreateBlogPost(ctx, req)
		require.NoError(t, err)

		_, err = env.svc.ExportBlogPostPDF(ctx, post.ID, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, []string{req.Cover}, fetcher.urls)
		assert.Equal(t, []byte("remote"), renderer.cover)
	})

	t.Run("cover failure is omitted", func(t *testing.T) {
		renderer := &fakeRenderer{}
		fetcher := &fakeFetcher{err: errors.New("timeout")}
		env := newTestService(t, simpleblog.WithExporter(renderer), simpleblog.WithCoverFetcher(fetcher))
		req := postRequest("Ada")
		req.Cover = "https://images.example.com/cover.jpg"
		post, err := env.svc.CreateBlogPost(ctx, req)
		require.NoError(t, err)

		_, err = env.svc.ExportBlogPostPDF(ctx, post.ID, io.Discard)
		require.NoError(t, err)
		assert.Nil(t, renderer.cover)
		assert.Equal(t, post.ID, renderer.post.ID)
	})

	t.Run("render failure", func(t *testing.T) {
		env := newTestService(t, simpleblog.WithExporter(&fakeRenderer{err: errors.New("boom")}))
		post, err := env.svc.CreateBlogPost(ctx, postRequest("Ada"))
		require.NoError(t, err)

		_, err = env.svc.ExportBlogPostPDF(ctx, post.ID, io.Discard)
		assert.ErrorIs(t, err, simpleblog.ErrExportFailed)
	})
}

func TestEventSinkFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)
	env.sink.fail = true

	author, err := env.svc.CreateAuthor(ctx, authorRequest())
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteAuthor(ctx, author.ID))
	assert.Equal(t, []string{"author.created", "author.deleted"}, env.sink.Events())
}
