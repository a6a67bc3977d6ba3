package services

import (
	"context"

	"postboard/app/models"
	"postboard/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// ListPosts returns every post. The result is never nil.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// CreatePost validates the request and inserts one post, returning the
// inserted rows as the data store reports them.
func (s *PostService) CreatePost(ctx context.Context, in *models.NewPost) ([]*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, Invalid(err)
	}

	post := in.Row()
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, storeFailure(err)
	}
	return []*models.Post{post}, nil
}
