package repositories

import (
	"context"
	"errors"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create stores a comment after checking its post exists. The post read is
// part of the transaction, so a concurrent delete of that post conflicts.
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(comment.PostID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrForeignKeyViolation
			}
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id
		comment.BeforeCreate()

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}

		// Post ID leads the key so a post's comments share a prefix
		return txn.Set(commentKey(comment.PostID, comment.ID), data)
	})
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := commentPrefix(postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
