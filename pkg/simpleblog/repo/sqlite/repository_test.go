package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/repotest"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewFromPath(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) simpleblog.Repository {
		return newRepo(t)
	})
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "blog.db")

	repo, err := NewFromPath(path)
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, simpleblog.CollectionBlogPosts, simpleblog.Record{ID: "p1", Data: []byte(`{"id":"p1","title":"hello"}`)}))
	require.NoError(t, repo.Close())

	reopened, err := NewFromPath(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, simpleblog.CollectionBlogPosts, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","title":"hello"}`, string(got.Data))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "blog.db?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", dsn("blog.db"))
	assert.Equal(t, "blog.db?cache=shared&_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", dsn("blog.db?cache=shared"))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
