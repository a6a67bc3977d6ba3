package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"
)

// Store is an in-memory data store shared by the mock post and comment
// repositories.
type Store struct {
	mutex         sync.RWMutex
	posts         map[int64]*models.Post
	comments      map[int64]*models.Comment
	nextPostID    int64
	nextCommentID int64
	err           error
}

type PostRepository struct{ store *Store }

type CommentRepository struct{ store *Store }

func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.posts = make(map[int64]*models.Post)
	s.comments = make(map[int64]*models.Comment)
	s.nextPostID = 1
	s.nextCommentID = 1
}

// Fail makes every following call return err, simulating an unreachable
// data store. Fail(nil) restores normal behaviour.
func (s *Store) Fail(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

func (s *Store) Posts() *PostRepository { return &PostRepository{store: s} }

func (s *Store) Comments() *CommentRepository { return &CommentRepository{store: s} }

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	s := m.store
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return s.err
	}

	post.ID = s.nextPostID
	s.nextPostID++
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	s := m.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	posts := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		p := *post
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (m *PostRepository) Delete(ctx context.Context, id int64) error {
	s := m.store
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return s.err
	}

	if _, exists := s.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for cid, comment := range s.comments {
		if comment.PostID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.posts, id)
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	s := m.store
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return s.err
	}

	if _, exists := s.posts[comment.PostID]; !exists {
		return repositories.ErrForeignKeyViolation
	}
	comment.ID = s.nextCommentID
	s.nextCommentID++
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	s := m.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	comments := []*models.Comment{}
	for _, comment := range s.comments {
		if comment.PostID == postID {
			c := *comment
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}
