package repositories

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"postboard/app/models"

	"github.com/boltdb/bolt"
)

var (
	postsBucket    = []byte("posts")
	commentsBucket = []byte("comments")
)

// OpenBolt opens the bolt file at path and makes sure both buckets exist.
func OpenBolt(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{postsBucket, commentsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// BoltPostRepository implements PostRepository on a bolt file.
type BoltPostRepository struct {
	db *bolt.DB
}

func NewBoltPostRepository(db *bolt.DB) *BoltPostRepository {
	return &BoltPostRepository{db: db}
}

func (r *BoltPostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(postsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		post.ID = int64(seq)
		post.BeforeCreate()

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return b.Put(itob(post.ID), data)
	})
}

func (r *BoltPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(postsBucket).ForEach(func(k, v []byte) error {
			var post models.Post
			if err := unmarshalEntity(v, &post); err != nil {
				return err
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes the post and its comments in one transaction.
func (r *BoltPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		posts := tx.Bucket(postsBucket)
		if posts.Get(itob(id)) == nil {
			return ErrNotFound
		}

		comments := tx.Bucket(commentsBucket)
		prefix := itob(id)
		var keys [][]byte
		c := comments.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := comments.Delete(k); err != nil {
				return err
			}
		}
		return posts.Delete(itob(id))
	})
}

// BoltCommentRepository implements CommentRepository on a bolt file.
// Keys are post ID followed by comment ID, both big endian.
type BoltCommentRepository struct {
	db *bolt.DB
}

func NewBoltCommentRepository(db *bolt.DB) *BoltCommentRepository {
	return &BoltCommentRepository{db: db}
}

func (r *BoltCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(postsBucket).Get(itob(comment.PostID)) == nil {
			return ErrForeignKeyViolation
		}

		b := tx.Bucket(commentsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		comment.ID = int64(seq)
		comment.BeforeCreate()

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return b.Put(append(itob(comment.PostID), itob(comment.ID)...), data)
	})
}

func (r *BoltCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(tx *bolt.Tx) error {
		prefix := itob(postID)
		c := tx.Bucket(commentsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var comment models.Comment
			if err := unmarshalEntity(v, &comment); err != nil {
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
