package repositories

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrForeignKeyViolation is returned when a comment names a post that does not exist.
	ErrForeignKeyViolation = errors.New(`insert or update on table "comments" violates foreign key constraint "comments_post_id_fkey"`)
)
