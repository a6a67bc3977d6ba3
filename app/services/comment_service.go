package services

import (
	"context"

	"postboard/app/models"
	"postboard/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// ListPostComments returns the comments whose post_id equals postID. A post
// that does not exist simply has no comments.
func (s *CommentService) ListPostComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// CreateComment validates the request and inserts one comment. Whether the
// post exists is left to the data store's foreign key.
func (s *CommentService) CreateComment(ctx context.Context, in *models.NewComment) ([]*models.Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, Invalid(err)
	}

	comment := in.Row()
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, storeFailure(err)
	}
	return []*models.Comment{comment}, nil
}
