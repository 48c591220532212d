// Package repotest is a conformance suite shared by the simpleblog.Repository
// implementations.
package repotest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Factory returns an empty repository. It may register cleanups on t.
type Factory func(t *testing.T) simpleblog.Repository

func record(id string, fields map[string]any) simpleblog.Record {
	doc := map[string]any{"id": id}
	for k, v := range fields {
		doc[k] = v
	}
	data, _ := json.Marshal(doc)
	return simpleblog.Record{ID: id, Data: data}
}

func decode(t *testing.T, rec simpleblog.Record) map[string]any {
	t.Helper()
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Data, &doc))
	return doc
}

func ids(records []simpleblog.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

// Run executes the suite against repositories created by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()
	c := simpleblog.CollectionAuthors

	t.Run("LoadEmpty", func(t *testing.T) {
		repo := newRepo(t)
		records, err := repo.Load(ctx, c)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("PutGet", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, c, record("a1", map[string]any{"name": "Ada"})))

		got, err := repo.Get(ctx, c, "a1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, "Ada", decode(t, *got)["name"])

		_, err = repo.Get(ctx, c, "missing")
		assert.ErrorIs(t, err, simpleblog.ErrRecordNotFound)
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, simpleblog.CollectionAuthors, record("x", nil)))

		_, err := repo.Get(ctx, simpleblog.CollectionBlogPosts, "x")
		assert.ErrorIs(t, err, simpleblog.ErrRecordNotFound)

		posts, err := repo.Load(ctx, simpleblog.CollectionBlogPosts)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("PutKeepsInsertionOrder", func(t *testing.T) {
		repo := newRepo(t)
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Put(ctx, c, record(id, nil)))
		}
		// overwrite keeps position
		require.NoError(t, repo.Put(ctx, c, record("a", map[string]any{"name": "changed"})))

		records, err := repo.Load(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids(records))
		assert.Equal(t, "changed", decode(t, records[1])["name"])
	})

	t.Run("SaveLoadRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		in := []simpleblog.Record{
			record("p2", map[string]any{"title": "second", "readTime": map[string]any{"value": 3.0, "unit": "minute"}}),
			record("p1", map[string]any{"title": "first", "comments": []any{}}),
		}
		require.NoError(t, repo.Save(ctx, c, in))

		loaded, err := repo.Load(ctx, c)
		require.NoError(t, err)
		require.Equal(t, []string{"p2", "p1"}, ids(loaded))

		require.NoError(t, repo.Save(ctx, c, loaded))
		reloaded, err := repo.Load(ctx, c)
		require.NoError(t, err)
		require.Len(t, reloaded, 2)
		for i := range in {
			assert.JSONEq(t, string(in[i].Data), string(reloaded[i].Data))
		}
	})

	t.Run("SaveReplacesCollection", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, c, record("old", nil)))
		require.NoError(t, repo.Save(ctx, c, []simpleblog.Record{record("new", nil)}))

		records, err := repo.Load(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, ids(records))

		require.NoError(t, repo.Save(ctx, c, nil))
		records, err = repo.Load(ctx, c)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("SaveRejectsDuplicateIDs", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Save(ctx, c, []simpleblog.Record{record("d", nil), record("d", nil)})
		assert.Error(t, err)
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, c, record("u1", map[string]any{"name": "before"})))

		updated, err := repo.Update(ctx, c, "u1", func(rec *simpleblog.Record) error {
			doc := decode(t, *rec)
			doc["name"] = "after"
			data, err := json.Marshal(doc)
			rec.Data = data
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, "after", decode(t, *updated)["name"])

		got, err := repo.Get(ctx, c, "u1")
		require.NoError(t, err)
		assert.Equal(t, "after", decode(t, *got)["name"])
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)
		called := false
		_, err := repo.Update(ctx, c, "nope", func(rec *simpleblog.Record) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, simpleblog.ErrRecordNotFound)
		assert.False(t, called)
	})

	t.Run("UpdateAbortsOnError", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, c, record("u2", map[string]any{"name": "kept"})))

		boom := errors.New("boom")
		_, err := repo.Update(ctx, c, "u2", func(rec *simpleblog.Record) error {
			rec.Data = []byte(`{"id":"u2","name":"lost"}`)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.Get(ctx, c, "u2")
		require.NoError(t, err)
		assert.Equal(t, "kept", decode(t, *got)["name"])
	})

	t.Run("ConcurrentUpdatesDoNotLoseWrites", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, c, record("counter", map[string]any{"n": 0})))

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, c, "counter", func(rec *simpleblog.Record) error {
					doc := map[string]any{}
					if err := json.Unmarshal(rec.Data, &doc); err != nil {
						return err
					}
					doc["n"] = doc["n"].(float64) + 1
					data, err := json.Marshal(doc)
					rec.Data = data
					return err
				})
				if err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.Get(ctx, c, "counter")
		require.NoError(t, err)
		assert.Equal(t, float64(workers), decode(t, *got)["n"])
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Put(ctx, c, record(fmt.Sprintf("r%d", i), nil)))
		}

		existed, err := repo.Delete(ctx, c, "r1")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.Delete(ctx, c, "r1")
		require.NoError(t, err)
		assert.False(t, existed)

		records, err := repo.Load(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, []string{"r0", "r2"}, ids(records))
	})
}
