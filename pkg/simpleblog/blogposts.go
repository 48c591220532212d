package simpleblog

import (
	"context"
	"errors"
	"strings"
)

func (s *service) ListBlogPosts(ctx context.Context, filter BlogPostFilter) ([]*BlogPost, error) {
	posts, err := s.loadBlogPosts(ctx)
	if err != nil {
		return nil, err
	}

	if title := strings.ToLower(strings.TrimSpace(filter.Title)); title != "" {
		filtered := make([]*BlogPost, 0, len(posts))
		for _, p := range posts {
			if strings.Contains(strings.ToLower(p.Title), title) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	if len(posts) == 0 && s.emptyListNotFound {
		return nil, ErrNoBlogPosts
	}
	return posts, nil
}

func (s *service) GetBlogPost(ctx context.Context, id string) (*BlogPost, error) {
	rec, err := s.repository.Get(ctx, CollectionBlogPosts, id)
	if err != nil {
		return nil, blogPostError(id, "get", err)
	}
	return decodeBlogPost(rec)
}

func (s *service) CreateBlogPost(ctx context.Context, req CreateBlogPostRequest) (*BlogPost, error) {
	if err := validateRequest("create blog post", BlogPostCreateRules, req); err != nil {
		return nil, err
	}

	post := &BlogPost{
		ID:        s.newID(),
		Category:  req.Category,
		Title:     req.Title,
		Cover:     req.Cover,
		ReadTime:  *req.ReadTime,
		Author:    *req.Author,
		Content:   req.Content,
		CreatedAt: s.now(),
		Comments:  []Comment{},
	}

	rec, err := encodeRecord(post.ID, post)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Put(ctx, CollectionBlogPosts, rec); err != nil {
		return nil, blogPostError(post.ID, "create", err)
	}

	s.fire("blogpost.created", s.eventSink.BlogPostCreated(ctx, post))
	return post, nil
}

// UpdateBlogPost merges patch onto the stored post with the given id.
func (s *service) UpdateBlogPost(ctx context.Context, id string, patch BlogPostPatch) (*BlogPost, error) {
	if err := validateRequest("update blog post", BlogPostUpdateRules, patch); err != nil {
		return nil, err
	}

	updated, err := s.updateBlogPost(ctx, id, "update", func(p *BlogPost) error {
		merged := patch.Apply(*p)
		if !patch.IsEmpty() {
			now := s.now()
			merged.UpdatedAt = &now
		}
		*p = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fire("blogpost.updated", s.eventSink.BlogPostUpdated(ctx, updated))
	return updated, nil
}

// DeleteBlogPost is idempotent: deleting an unknown id succeeds.
func (s *service) DeleteBlogPost(ctx context.Context, id string) error {
	existing, err := s.GetBlogPost(ctx, id)
	if err != nil && !IsNotFound(err) {
		return err
	}

	existed, err := s.repository.Delete(ctx, CollectionBlogPosts, id)
	if err != nil {
		return blogPostError(id, "delete", err)
	}
	if !existed {
		return nil
	}

	if existing != nil {
		s.removeMedia(ctx, existing.Cover)
	}
	s.fire("blogpost.deleted", s.eventSink.BlogPostDeleted(ctx, id))
	return nil
}

func (s *service) loadBlogPosts(ctx context.Context) ([]*BlogPost, error) {
	records, err := s.repository.Load(ctx, CollectionBlogPosts)
	if err != nil {
		return nil, err
	}
	posts := make([]*BlogPost, 0, len(records))
	for i := range records {
		p, err := decodeBlogPost(&records[i])
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// updateBlogPost runs fn against the stored post under the repository's
// record lock and persists the result. fn must not change the id.
func (s *service) updateBlogPost(ctx context.Context, id, op string, fn func(*BlogPost) error) (*BlogPost, error) {
	var updated *BlogPost
	_, err := s.repository.Update(ctx, CollectionBlogPosts, id, func(rec *Record) error {
		post, err := decodeBlogPost(rec)
		if err != nil {
			return err
		}
		if err := fn(post); err != nil {
			return err
		}
		post.ID = id
		next, err := encodeRecord(id, post)
		if err != nil {
			return err
		}
		rec.Data = next.Data
		updated = post
		return nil
	})
	if err != nil {
		return nil, blogPostError(id, op, err)
	}
	return updated, nil
}

func blogPostError(id, op string, err error) error {
	var bpErr *BlogPostError
	if errors.As(err, &bpErr) {
		return err
	}
	if errors.Is(err, ErrRecordNotFound) {
		err = ErrBlogPostNotFound
	}
	return &BlogPostError{PostID: id, Op: op, Err: err}
}
