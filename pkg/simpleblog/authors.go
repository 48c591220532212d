package simpleblog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

func (s *service) ListAuthors(ctx context.Context) ([]*Author, error) {
	records, err := s.repository.Load(ctx, CollectionAuthors)
	if err != nil {
		return nil, err
	}

	authors := make([]*Author, 0, len(records))
	for i := range records {
		a, err := decodeAuthor(&records[i])
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}

	if len(authors) == 0 && s.emptyListNotFound {
		return nil, ErrNoAuthors
	}
	return authors, nil
}

func (s *service) GetAuthor(ctx context.Context, id string) (*Author, error) {
	rec, err := s.repository.Get(ctx, CollectionAuthors, id)
	if err != nil {
		return nil, authorError(id, "get", err)
	}
	return decodeAuthor(rec)
}

func (s *service) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error) {
	if err := validateRequest("create author", AuthorCreateRules, req); err != nil {
		return nil, err
	}

	if s.uniqueEmails {
		taken, err := s.emailTaken(ctx, req.Email, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &AuthorError{Op: "create", Err: ErrEmailTaken}
		}
	}

	author := &Author{
		ID:          s.newID(),
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Avatar:      req.Avatar,
		CreatedAt:   s.now(),
	}
	if author.Avatar == "" {
		author.Avatar = s.generatedAvatar(author)
	}

	rec, err := encodeRecord(author.ID, author)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Put(ctx, CollectionAuthors, rec); err != nil {
		return nil, authorError(author.ID, "create", err)
	}

	s.fire("author.created", s.eventSink.AuthorCreated(ctx, author))
	return author, nil
}

func (s *service) UpdateAuthor(ctx context.Context, id string, patch AuthorPatch) (*Author, error) {
	if err := validateRequest("update author", AuthorUpdateRules, patch); err != nil {
		return nil, err
	}

	if s.uniqueEmails && patch.Email != nil {
		taken, err := s.emailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &AuthorError{AuthorID: id, Op: "update", Err: ErrEmailTaken}
		}
	}

	var updated *Author
	_, err := s.repository.Update(ctx, CollectionAuthors, id, func(rec *Record) error {
		current, err := decodeAuthor(rec)
		if err != nil {
			return err
		}
		merged := patch.Apply(*current)
		if !patch.IsEmpty() {
			now := s.now()
			merged.UpdatedAt = &now
		}
		next, err := encodeRecord(id, &merged)
		if err != nil {
			return err
		}
		rec.Data = next.Data
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, authorError(id, "update", err)
	}

	s.fire("author.updated", s.eventSink.AuthorUpdated(ctx, updated))
	return updated, nil
}

// DeleteAuthor is idempotent: deleting an unknown id succeeds.
func (s *service) DeleteAuthor(ctx context.Context, id string) error {
	existing, err := s.GetAuthor(ctx, id)
	if err != nil && !IsNotFound(err) {
		return err
	}

	existed, err := s.repository.Delete(ctx, CollectionAuthors, id)
	if err != nil {
		return authorError(id, "delete", err)
	}
	if !existed {
		return nil
	}

	if existing != nil {
		s.removeMedia(ctx, existing.Avatar)
	}
	s.fire("author.deleted", s.eventSink.AuthorDeleted(ctx, id))
	return nil
}

// CheckEmailExists reports whether any author uses email, ignoring case.
func (s *service) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	if err := newValidationError("check email", CheckEmailRules.Validate(map[string]any{"email": email})); err != nil {
		return false, err
	}
	return s.emailTaken(ctx, email, "")
}

// ListAuthorBlogPosts returns the posts whose embedded author name matches the
// author's first name or full name. Posts do not reference authors by id.
func (s *service) ListAuthorBlogPosts(ctx context.Context, id string) ([]*BlogPost, error) {
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	posts, err := s.loadBlogPosts(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{normalizeName(author.Name), normalizeName(author.FullName())}
	result := make([]*BlogPost, 0)
	for _, p := range posts {
		postAuthor := normalizeName(p.Author.Name)
		for _, n := range names {
			if n != "" && postAuthor == n {
				result = append(result, p)
				break
			}
		}
	}
	return result, nil
}

func (s *service) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	records, err := s.repository.Load(ctx, CollectionAuthors)
	if err != nil {
		return false, err
	}
	email = strings.TrimSpace(email)
	for i := range records {
		a, err := decodeAuthor(&records[i])
		if err != nil {
			return false, err
		}
		if a.ID != exceptID && strings.EqualFold(strings.TrimSpace(a.Email), email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) generatedAvatar(a *Author) string {
	return fmt.Sprintf("%s?name=%s", s.avatarServiceURL, url.QueryEscape(a.FullName()))
}

func authorError(id, op string, err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		err = ErrAuthorNotFound
	}
	return &AuthorError{AuthorID: id, Op: op, Err: err}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
