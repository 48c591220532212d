package simpleblog

import (
	"context"
)

func (s *service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	post, err := s.GetBlogPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// AddComment appends a comment with a generated id to the post's comments.
func (s *service) AddComment(ctx context.Context, postID string, req CreateCommentRequest) (*Comment, error) {
	if err := validateRequest("add comment", CommentRules, req); err != nil {
		return nil, err
	}

	comment := Comment{
		ID:        s.newID(),
		Name:      req.Name,
		Message:   req.Message,
		CreatedAt: s.now(),
	}

	_, err := s.updateBlogPost(ctx, postID, "add comment", func(p *BlogPost) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fire("comment.added", s.eventSink.CommentAdded(ctx, postID, &comment))
	return &comment, nil
}

// DeleteComment removes a comment and keeps the order of its siblings. An
// unknown comment id is not an error; an unknown post is.
func (s *service) DeleteComment(ctx context.Context, postID, commentID string) error {
	removed := false
	_, err := s.updateBlogPost(ctx, postID, "delete comment", func(p *BlogPost) error {
		kept := make([]Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			if c.ID == commentID {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		p.Comments = kept
		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.fire("comment.deleted", s.eventSink.CommentDeleted(ctx, postID, commentID))
	}
	return nil
}
