package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillblog/quill/storage/model"
)

// PostsStorage returns a PostsStorage
func (s *Storage) PostsStorage() *PostsStorage {
	return &PostsStorage{db: s.db}
}

// PostsStorage implements model.PostsStore using GORM. Comments and likes
// live in their own tables, so every collection mutation is a single row
// insert or delete and never a rewrite of the whole aggregate.
type PostsStorage struct {
	db *gorm.DB
}

func postNotFound(id uint) model.NotFoundError {
	return model.NotFoundErrorFmt("post not found: %d", id)
}

// List returns all posts without comments and likes, newest first
func (s *PostsStorage) List() ([]model.Post, error) {
	var posts []model.Post
	if err := s.db.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return posts, nil
}

// Get returns a post together with its comments and likes
func (s *PostsStorage) Get(id uint) (*model.Post, error) {
	var p model.Post
	err := s.db.
		Preload(
			"Comments", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("id")
			},
		).
		Preload(
			"Likes", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("created_at").Order("user_id")
			},
		).
		First(&p, id).Error
	if err != nil {
		return nil, notFoundOr(err, postNotFound(id))
	}
	return &p, nil
}

// Create stores a new post
func (s *PostsStorage) Create(title, body string) (*model.Post, error) {
	now := time.Now()
	p := model.Post{
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

// Update replaces title and/or body. UpdatedAt never moves backwards, even if
// the wall clock does.
func (s *PostsStorage) Update(id uint, title, body *string) (*model.Post, error) {
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var p model.Post
			if err := tx.First(&p, id).Error; err != nil {
				return notFoundOr(err, postNotFound(id))
			}
			updates := make(map[string]any)
			if title != nil {
				updates["title"] = *title
			}
			if body != nil {
				updates["body"] = *body
			}
			if len(updates) == 0 {
				return nil
			}
			now := time.Now()
			if now.Before(p.UpdatedAt) {
				now = p.UpdatedAt
			}
			updates["updated_at"] = now
			return errors.WithStack(tx.Model(&model.Post{}).Where("id = ?", id).Updates(updates).Error)
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a post together with its comments and likes
func (s *PostsStorage) Delete(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
				return errors.WithStack(err)
			}
			if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
				return errors.WithStack(err)
			}
			res := tx.Delete(&model.Post{}, id)
			if res.Error != nil {
				return errors.WithStack(res.Error)
			}
			if res.RowsAffected == 0 {
				return postNotFound(id)
			}
			return nil
		},
	)
}

func postExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&model.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.WithStack(err)
	}
	if count == 0 {
		return postNotFound(id)
	}
	return nil
}

// ToggleLike removes the (post, user) like row if present and inserts it
// otherwise. The composite primary key rejects a second row for the same
// user, so concurrent toggles can never produce a duplicate like.
func (s *PostsStorage) ToggleLike(postID, userID uint) (bool, error) {
	var liked bool
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := postExists(tx, postID); err != nil {
				return err
			}
			res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
			if res.Error != nil {
				return errors.WithStack(res.Error)
			}
			if res.RowsAffected > 0 {
				liked = false
				return nil
			}
			like := model.Like{
				PostID:    postID,
				UserID:    userID,
				CreatedAt: time.Now(),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return errors.WithStack(err)
			}
			liked = true
			return nil
		},
	)
	return liked, err
}

// AppendComment inserts the comment as a new row of the post
func (s *PostsStorage) AppendComment(postID uint, comment model.Comment) (*model.Comment, error) {
	comment.ID = 0
	comment.PostID = postID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := postExists(tx, postID); err != nil {
				return err
			}
			return errors.WithStack(tx.Create(&comment).Error)
		},
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Comment returns a single comment of a post
func (s *PostsStorage) Comment(postID, commentID uint) (*model.Comment, error) {
	if err := postExists(s.db, postID); err != nil {
		return nil, err
	}
	var c model.Comment
	if err := s.db.Where("post_id = ? AND id = ?", postID, commentID).First(&c).Error; err != nil {
		return nil, notFoundOr(err, model.NotFoundErrorFmt("comment not found: %d", commentID))
	}
	return &c, nil
}

// DeleteComment removes exactly one comment
func (s *PostsStorage) DeleteComment(postID, commentID uint) error {
	res := s.db.Where("post_id = ? AND id = ?", postID, commentID).Delete(&model.Comment{})
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if err := postExists(s.db, postID); err != nil {
		return err
	}
	return model.NotFoundErrorFmt("comment not found: %d", commentID)
}

// Export returns all posts including comments and likes
func (s *PostsStorage) Export() ([]model.Post, error) {
	var posts []model.Post
	err := s.db.
		Preload(
			"Comments", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("id")
			},
		).
		Preload("Likes").
		Order("id").
		Find(&posts).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return posts, nil
}

// Import stores a complete post aggregate, keeping the post id. Comment ids
// are assigned anew; their order is kept.
func (s *PostsStorage) Import(p model.Post) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			post := model.Post{
				ID:        p.ID,
				Title:     p.Title,
				Body:      p.Body,
				CreatedAt: p.CreatedAt,
				UpdatedAt: p.UpdatedAt,
			}
			if err := tx.Create(&post).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return model.AlreadyExistsErrorFmt("post already exists: %d", p.ID)
				}
				return errors.WithStack(err)
			}
			for _, c := range p.Comments {
				c.ID = 0
				c.PostID = post.ID
				if err := tx.Create(&c).Error; err != nil {
					return errors.WithStack(err)
				}
			}
			for _, l := range p.Likes {
				l.PostID = post.ID
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&l).Error; err != nil {
					return errors.WithStack(err)
				}
			}
			return advancePostIDSequence(tx)
		},
	)
}

// advancePostIDSequence moves the postgres id sequence of posts past the
// highest stored id. Rows inserted with an explicit id do not advance it.
// mysql and sqlite derive the next id from the table itself.
func advancePostIDSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return errors.WithStack(
		tx.Exec(
			"SELECT setval(pg_get_serial_sequence('posts', 'id'), (SELECT MAX(id) FROM posts))",
		).Error,
	)
}
