package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	maxTxnAttempts = 64
)

// Ids are zero padded so keys iterate in id order.
func postKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", PostKeyPrefix, id))
}

func commentPrefix(postID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:", CommentKeyPrefix, postID))
}

func commentKey(postID, id int64) []byte {
	return append(commentPrefix(postID), fmt.Sprintf("%020d", id)...)
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int64, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		id = 1
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			id = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return int64(id), nil
}

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction touched the same keys.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxnAttempts; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
