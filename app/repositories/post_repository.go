package repositories

import (
	"context"
	"errors"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create assigns the next post ID and stores the post.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.BeforeCreate()

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// List returns every post in ID order.
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post and, in the same transaction, every comment on it.
func (r *BadgerPostRepository) Delete(ctx context.Context, id int64) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := postKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Collect first: badger does not allow deleting under a live iterator.
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := commentPrefix(id)
		var keys [][]byte
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}
