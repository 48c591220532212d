package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/repotest"
)

func TestRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) simpleblog.Repository {
		repo, err := New(Config{Dir: t.TempDir()})
		require.NoError(t, err)
		return repo
	})
}

func TestNew_CreatesMissingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	_, err := New(Config{Dir: dir})
	require.NoError(t, err)

	for _, name := range []string{"authors.json", "blogPosts.json"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	}
}

func TestNew_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := `[{"id":"a1","name":"Ada"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authors.json"), []byte(existing), 0644))

	repo, err := New(Config{Dir: dir})
	require.NoError(t, err)

	records, err := repo.Load(context.Background(), simpleblog.CollectionAuthors)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a1", records[0].ID)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogPosts.json"), []byte(`[{"id":`), 0644))

	_, err = repo.Load(context.Background(), simpleblog.CollectionBlogPosts)
	require.Error(t, err)
	var storageErr *simpleblog.StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "decode", storageErr.Op)
}

func TestLoad_ElementWithoutID(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authors.json"), []byte(`[{"name":"no id"}]`), 0644))

	_, err = repo.Load(context.Background(), simpleblog.CollectionAuthors)
	assert.Error(t, err)
}

func TestLoad_LegacyIDs(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authors.json"),
		[]byte(`[{"id":17,"name":"numeric"},{"_id":"legacy","name":"underscore"}]`), 0644))

	records, err := repo.Load(context.Background(), simpleblog.CollectionAuthors)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "17", records[0].ID)
	assert.Equal(t, "legacy", records[1].ID)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(records[0].Data, &first))
	require.NoError(t, json.Unmarshal(records[1].Data, &second))
	assert.Equal(t, "17", first["id"])
	assert.Equal(t, "numeric", first["name"])
	assert.Equal(t, "legacy", second["id"])
	assert.NotContains(t, second, "_id")

	rec, err := repo.Get(context.Background(), simpleblog.CollectionAuthors, "17")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"17","name":"numeric"}`, string(rec.Data))
}

func TestWrite_FileFormat(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(Config{Dir: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, simpleblog.CollectionAuthors, simpleblog.Record{ID: "a1", Data: []byte(`{"id":"a1","name":"Ada"}`)}))
	// data without an id gets one
	require.NoError(t, repo.Put(ctx, simpleblog.CollectionAuthors, simpleblog.Record{ID: "a2", Data: []byte(`{"name":"Grace"}`)}))

	raw, err := os.ReadFile(filepath.Join(dir, "authors.json"))
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0]["id"])
	assert.Equal(t, "a2", items[1]["id"])
	assert.Equal(t, "Grace", items[1]["name"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temporary files must not be left behind")
	}
}
