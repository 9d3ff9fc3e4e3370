// Package engagement implements the reader interactions on a post: liking
// and commenting. Every operation expects an already authenticated user id.
package engagement

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/storage/model"
)

// Engine applies likes and comments to post aggregates
type Engine struct {
	posts model.PostsStore
	users model.UsersStore
	now   func() time.Time
}

// NewEngine creates a new Engine
func NewEngine(posts model.PostsStore, users model.UsersStore) *Engine {
	return &Engine{
		posts: posts,
		users: users,
		now:   time.Now,
	}
}

// ToggleLike likes the post for userID if the user does not like it yet and
// unlikes it otherwise. Two calls in a row cancel each other out.
func (e *Engine) ToggleLike(postID, userID uint) (bool, error) {
	liked, err := e.posts.ToggleLike(postID, userID)
	if err != nil {
		return false, err
	}
	log.WithFields(
		log.Fields{
			"post":  postID,
			"user":  userID,
			"liked": liked,
		},
	).Debug("toggled like")
	return liked, nil
}

// AppendComment adds a comment by userID to the end of the post's comments.
// The comment keeps the username the user has right now.
func (e *Engine) AppendComment(postID, userID uint, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ValidationError("comment text is required")
	}
	user, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	comment, err := e.posts.AppendComment(
		postID, model.Comment{
			UserID:    user.ID,
			Username:  user.Username,
			Text:      text,
			CreatedAt: e.now(),
		},
	)
	if err != nil {
		return nil, err
	}
	log.WithFields(
		log.Fields{
			"post":    postID,
			"user":    userID,
			"comment": comment.ID,
		},
	).Debug("added comment")
	return comment, nil
}

// DeleteComment removes a comment on behalf of requesterID.
//
// If suppliedUsername is not empty it must match the username stored on the
// comment. Independently of that the requester must own the comment; both
// checks have to pass.
func (e *Engine) DeleteComment(postID, commentID, requesterID uint, suppliedUsername string) error {
	comment, err := e.posts.Comment(postID, commentID)
	if err != nil {
		return err
	}
	if suppliedUsername != "" && comment.Username != suppliedUsername {
		return model.ForbiddenError("you are not authorized to delete this comment")
	}
	if comment.UserID != requesterID {
		return model.ForbiddenError("you are not authorized to delete this comment")
	}
	if err = e.posts.DeleteComment(postID, commentID); err != nil {
		return errors.WithMessagef(err, "could not delete comment %d", commentID)
	}
	log.WithFields(
		log.Fields{
			"post":    postID,
			"user":    requesterID,
			"comment": commentID,
		},
	).Debug("deleted comment")
	return nil
}
