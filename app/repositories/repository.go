package repositories

import (
	"context"
	"fmt"
	"os"

	"postboard/app/config"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository is the process-wide data store handle: one post and one
// comment repository sharing a single driver connection.
type Repository struct {
	Posts    PostRepository
	Comments CommentRepository
	Driver   string

	close func() error
}

// NewRepository opens the driver named in cfg. Remote drivers connect lazily,
// so an unreachable data store surfaces per request rather than here.
func NewRepository(ctx context.Context, cfg config.StoreConfig) (*Repository, error) {
	switch cfg.Driver {
	case config.DriverRest:
		client := NewRestClient(cfg.URL, cfg.Key, nil)
		return &Repository{
			Posts:    NewRestPostRepository(client),
			Comments: NewRestCommentRepository(client),
			Driver:   cfg.Driver,
			close:    func() error { return nil },
		}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return &Repository{
			Posts:    NewPostgresPostRepository(pool),
			Comments: NewPostgresCommentRepository(pool),
			Driver:   cfg.Driver,
			close:    func() error { pool.Close(); return nil },
		}, nil

	case config.DriverBadger:
		path := cfg.ResolvedPath()
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, err
		}
		db, err := badger.Open(badger.DefaultOptions(path).WithLogger(log.WithField("store", "badger")))
		if err != nil {
			return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
		}
		return newBadgerRepository(db, cfg.Driver), nil

	case config.DriverMemory:
		return NewInMemoryRepository()

	case config.DriverBolt:
		path := cfg.ResolvedPath()
		db, err := OpenBolt(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt at %q: %w", path, err)
		}
		return &Repository{
			Posts:    NewBoltPostRepository(db),
			Comments: NewBoltCommentRepository(db),
			Driver:   cfg.Driver,
			close:    db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// NewInMemoryRepository returns a badger-backed repository that lives only
// as long as the process.
func NewInMemoryRepository() (*Repository, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return newBadgerRepository(db, config.DriverMemory), nil
}

func newBadgerRepository(db *badger.DB, driver string) *Repository {
	return &Repository{
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Driver:   driver,
		close:    db.Close,
	}
}

func (r *Repository) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
