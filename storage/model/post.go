package model

import (
	"time"
)

// Post is the blog aggregate: the post itself together with its comments and
// likes. Comments and likes never touch UpdatedAt.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id" msgpack:"id"`
	Title     string    `json:"title" msgpack:"title"`
	Body      string    `json:"body" msgpack:"body"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at" msgpack:"updated_at"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments" msgpack:"comments"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"likes" msgpack:"likes"`

	// NextCommentID is only used by document stores that assign comment ids
	// per post
	NextCommentID uint `gorm:"-" json:"-" msgpack:"next_comment_id"`
}

// LikedBy reports whether userID is part of the post's like set
func (p Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// LikeCount returns the number of likes
func (p Post) LikeCount() int {
	return len(p.Likes)
}

// Comment is a reader comment on a post. Username is a snapshot taken when
// the comment was written and is not updated afterwards.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id" msgpack:"id"`
	PostID    uint      `gorm:"index" json:"post_id" msgpack:"post_id"`
	UserID    uint      `gorm:"index" json:"user_id" msgpack:"user_id"`
	Username  string    `gorm:"size:255" json:"username" msgpack:"username"`
	Text      string    `json:"text" msgpack:"text"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// Like is the membership of a user in a post's like set. The composite
// primary key keeps the set free of duplicates.
type Like struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"-" msgpack:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id" msgpack:"user_id"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// PostsStore persists Post aggregates. All collection mutations must be
// applied atomically by the implementation; callers never write back a
// whole aggregate they read before.
type PostsStore interface {
	// List returns all posts without comments and likes, newest first
	List() ([]Post, error)
	// Get returns a post with its comments (insertion order) and likes
	Get(id uint) (*Post, error)
	// Create stores a new post
	Create(title, body string) (*Post, error)
	// Update replaces title and/or body and bumps UpdatedAt
	Update(id uint, title, body *string) (*Post, error)
	// Delete removes a post together with its comments and likes
	Delete(id uint) error

	// ToggleLike adds userID to the like set if absent, removes it
	// otherwise; returns whether the user likes the post afterwards
	ToggleLike(postID, userID uint) (bool, error)
	// AppendComment appends a comment and returns it with its assigned id
	AppendComment(postID uint, comment Comment) (*Comment, error)
	// Comment returns a single comment of a post
	Comment(postID, commentID uint) (*Comment, error)
	// DeleteComment removes exactly one comment
	DeleteComment(postID, commentID uint) error
}
