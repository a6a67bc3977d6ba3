package repositories

import (
	"context"
	"errors"

	"postboard/app/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

const (
	listPostsSQL = `
SELECT id, title, content, author, created_at
FROM posts
ORDER BY id;`

	createPostSQL = `
INSERT INTO posts (title, content, author)
VALUES ($1, $2, $3)
RETURNING id, created_at;`

	deletePostSQL = `
DELETE FROM posts
WHERE id = $1;`

	listCommentsSQL = `
SELECT id, post_id, content, author, created_at
FROM comments
WHERE post_id = $1
ORDER BY id;`

	createCommentSQL = `
INSERT INTO comments (post_id, content, author)
VALUES ($1, $2, $3)
RETURNING id, created_at;`
)

// pgError maps constraint failures onto the package sentinels and leaves
// everything else as the driver reported it.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrForeignKeyViolation
	}
	return err
}

// PostgresPostRepository implements PostRepository against the posts table.
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	row := r.pool.QueryRow(ctx, createPostSQL, post.Title, post.Content, post.Author)
	if err := row.Scan(&post.ID, &post.CreatedAt); err != nil {
		return pgError(err)
	}
	return nil
}

func (r *PostgresPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, listPostsSQL)
	if err != nil {
		return nil, pgError(err)
	}

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Post, error) {
		var p models.Post
		err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt)
		return &p, err
	})
	if err != nil {
		return nil, pgError(err)
	}
	return posts, nil
}

// Delete relies on the ON DELETE CASCADE constraint for comments.
func (r *PostgresPostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deletePostSQL, id)
	if err != nil {
		return pgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresCommentRepository implements CommentRepository against the comments table.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	row := r.pool.QueryRow(ctx, createCommentSQL, comment.PostID, comment.Content, comment.Author)
	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return pgError(err)
	}
	return nil
}

func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx, listCommentsSQL, postID)
	if err != nil {
		return nil, pgError(err)
	}

	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.CreatedAt)
		return &c, err
	})
	if err != nil {
		return nil, pgError(err)
	}
	return comments, nil
}
