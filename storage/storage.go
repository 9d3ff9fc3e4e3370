package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/quillblog/quill/storage/model"
)

// Storage owns the relational database. The users, key value and (by default)
// posts stores are views on it.
type Storage struct {
	db         *gorm.DB
	userParams Argon2idParams
}

func schema() []any {
	return []any{
		&model.User{},
		&model.KeyValue{},
		&model.Post{},
		&model.Comment{},
		&model.Like{},
	}
}

// NewStorage connects to the configured database and brings its schema up to
// date
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to %s database", config.Driver)
	}
	if err = db.AutoMigrate(schema()...); err != nil {
		return nil, errors.Wrap(err, "could not migrate database schema")
	}
	return &Storage{
		db:         db,
		userParams: config.UsersHash.orDefault(),
	}, nil
}

// Close closes the database connection pool
func (s *Storage) Close() error {
	pool, err := s.db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return pool.Close()
}
