package repositories

import (
	"context"

	"postboard/app/models"
)

// PostRepository defines the interface for post data access.
// Create fills in the ID and CreatedAt the store assigned.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}
