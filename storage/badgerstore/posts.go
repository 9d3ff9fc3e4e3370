// Package badgerstore implements model.PostsStore on top of badger. Each post
// aggregate (post, comments and likes) is a single msgpack document; every
// mutation is a read-modify-write inside a badger transaction, and badger's
// conflict detection turns concurrent writers of the same post into retries
// instead of lost updates.
package badgerstore

import (
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"tideland.dev/go/slices"

	"github.com/quillblog/quill/storage/model"
)

const (
	postPrefix  = "post/"
	sequenceKey = "seq/post"

	maxConflictRetries = 100
)

// PostsStorage implements model.PostsStore with badger
type PostsStorage struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) a badger database at dir. An empty dir opens an
// in-memory database.
func Open(dir string) (*PostsStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(log.StandardLogger())
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not open badger database")
	}
	return New(db)
}

// New creates a PostsStorage on an already opened badger database
func New(db *badger.DB) (*PostsStorage, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), 16)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &PostsStorage{
		db:  db,
		seq: seq,
	}, nil
}

// Close releases the id sequence and closes the database
func (s *PostsStorage) Close() error {
	if err := s.seq.Release(); err != nil {
		log.WithError(err).Warn("could not release badger post sequence")
	}
	return s.db.Close()
}

func postKey(id uint) []byte {
	return []byte(fmt.Sprintf("%s%020d", postPrefix, id))
}

func postNotFound(id uint) model.NotFoundError {
	return model.NotFoundErrorFmt("post not found: %d", id)
}

func readPost(txn *badger.Txn, id uint) (*model.Post, error) {
	item, err := txn.Get(postKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, postNotFound(id)
		}
		return nil, errors.WithStack(err)
	}
	var p model.Post
	if err = item.Value(
		func(val []byte) error {
			return msgpack.Unmarshal(val, &p)
		},
	); err != nil {
		return nil, errors.Wrapf(err, "could not decode post %d", id)
	}
	return &p, nil
}

func writePost(txn *badger.Txn, p *model.Post) error {
	data, err := msgpack.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}
	return txn.Set(postKey(p.ID), data)
}

// update loads the post, applies mutate and writes it back in one
// transaction. On a write conflict the whole cycle is repeated with a fresh
// read, so mutate must only depend on the post it is handed.
func (s *PostsStorage) update(id uint, mutate func(p *model.Post) error) (*model.Post, error) {
	var out *model.Post
	for attempt := 0; ; attempt++ {
		err := s.db.Update(
			func(txn *badger.Txn) error {
				p, err := readPost(txn, id)
				if err != nil {
					return err
				}
				if err = mutate(p); err != nil {
					return err
				}
				out = p
				return writePost(txn, p)
			},
		)
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			log.WithField("post", id).Debug("badger write conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (s *PostsStorage) iterate(fn func(p model.Post)) error {
	return s.db.View(
		func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(postPrefix)
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Rewind(); it.Valid(); it.Next() {
				var p model.Post
				if err := it.Item().Value(
					func(val []byte) error {
						return msgpack.Unmarshal(val, &p)
					},
				); err != nil {
					return errors.Wrapf(err, "could not decode %s", it.Item().Key())
				}
				fn(p)
			}
			return nil
		},
	)
}

// List returns all posts without comments and likes, newest first
func (s *PostsStorage) List() ([]model.Post, error) {
	var posts []model.Post
	err := s.iterate(
		func(p model.Post) {
			p.Comments = nil
			p.Likes = nil
			posts = append(posts, p)
		},
	)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(
		posts, func(i, j int) bool {
			if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
				return posts[i].ID > posts[j].ID
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		},
	)
	return posts, nil
}

// Get returns a post together with its comments and likes
func (s *PostsStorage) Get(id uint) (p *model.Post, err error) {
	err = s.db.View(
		func(txn *badger.Txn) error {
			p, err = readPost(txn, id)
			return err
		},
	)
	return
}

// Create stores a new post under the next free id
func (s *PostsStorage) Create(title, body string) (*model.Post, error) {
	now := time.Now()
	for {
		n, err := s.seq.Next()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		p := &model.Post{
			ID:        uint(n + 1),
			Title:     title,
			Body:      body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.db.Update(
			func(txn *badger.Txn) error {
				if _, err := txn.Get(postKey(p.ID)); err == nil {
					return model.AlreadyExistsErrorFmt("post already exists: %d", p.ID)
				} else if !errors.Is(err, badger.ErrKeyNotFound) {
					return errors.WithStack(err)
				}
				return writePost(txn, p)
			},
		)
		if _, taken := err.(model.AlreadyExistsError); taken {
			// id was used by an imported post
			continue
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Update replaces title and/or body; UpdatedAt never moves backwards
func (s *PostsStorage) Update(id uint, title, body *string) (*model.Post, error) {
	return s.update(
		id, func(p *model.Post) error {
			if title == nil && body == nil {
				return nil
			}
			if title != nil {
				p.Title = *title
			}
			if body != nil {
				p.Body = *body
			}
			now := time.Now()
			if now.After(p.UpdatedAt) {
				p.UpdatedAt = now
			}
			return nil
		},
	)
}

// Delete removes a post document
func (s *PostsStorage) Delete(id uint) error {
	return s.db.Update(
		func(txn *badger.Txn) error {
			if _, err := readPost(txn, id); err != nil {
				return err
			}
			return txn.Delete(postKey(id))
		},
	)
}

// ToggleLike flips the membership of userID in the post's like set
func (s *PostsStorage) ToggleLike(postID, userID uint) (bool, error) {
	var liked bool
	_, err := s.update(
		postID, func(p *model.Post) error {
			byUser := func(l model.Like) bool { return l.UserID == userID }
			if slices.ContainsAny(p.Likes, byUser) {
				kept := p.Likes[:0]
				for _, l := range p.Likes {
					if l.UserID != userID {
						kept = append(kept, l)
					}
				}
				p.Likes = kept
				liked = false
				return nil
			}
			p.Likes = append(
				p.Likes, model.Like{
					PostID:    postID,
					UserID:    userID,
					CreatedAt: time.Now(),
				},
			)
			liked = true
			return nil
		},
	)
	return liked, err
}

// AppendComment appends a comment; ids are unique within the post
func (s *PostsStorage) AppendComment(postID uint, comment model.Comment) (*model.Comment, error) {
	var stored model.Comment
	_, err := s.update(
		postID, func(p *model.Post) error {
			stored = comment
			p.NextCommentID++
			stored.ID = p.NextCommentID
			stored.PostID = postID
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = time.Now()
			}
			p.Comments = append(p.Comments, stored)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Comment returns a single comment of a post
func (s *PostsStorage) Comment(postID, commentID uint) (*model.Comment, error) {
	p, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Comments {
		if c.ID == commentID {
			return &c, nil
		}
	}
	return nil, model.NotFoundErrorFmt("comment not found: %d", commentID)
}

// DeleteComment removes exactly one comment, keeping the order of the rest
func (s *PostsStorage) DeleteComment(postID, commentID uint) error {
	_, err := s.update(
		postID, func(p *model.Post) error {
			for i, c := range p.Comments {
				if c.ID == commentID {
					p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
					return nil
				}
			}
			return model.NotFoundErrorFmt("comment not found: %d", commentID)
		},
	)
	return err
}

// Export returns all post aggregates ordered by id
func (s *PostsStorage) Export() ([]model.Post, error) {
	var posts []model.Post
	if err := s.iterate(
		func(p model.Post) {
			posts = append(posts, p)
		},
	); err != nil {
		return nil, err
	}
	return posts, nil
}

// Import stores a complete aggregate under its own id, keeping comment ids
func (s *PostsStorage) Import(p model.Post) error {
	for _, c := range p.Comments {
		if c.ID > p.NextCommentID {
			p.NextCommentID = c.ID
		}
	}
	return s.db.Update(
		func(txn *badger.Txn) error {
			if _, err := txn.Get(postKey(p.ID)); err == nil {
				return model.AlreadyExistsErrorFmt("post already exists: %d", p.ID)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return errors.WithStack(err)
			}
			return writePost(txn, &p)
		},
	)
}
