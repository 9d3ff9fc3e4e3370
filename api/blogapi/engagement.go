package blogapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quillblog/quill/engagement"
	"github.com/quillblog/quill/session"
)

type commentReq struct {
	Comment string `json:"comment" form:"comment"`
}

type deleteCommentReq struct {
	Username string `json:"username" form:"username"`
}

// registerEngagement wires likes and comments; all routes need a session
func registerEngagement(r fiber.Router, engine *engagement.Engine, guard fiber.Handler) {
	r.Post(
		"/post/:id/like", guard, postCacheInvalidationMiddleware, func(c *fiber.Ctx) error {
			postID, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			userID, _ := session.UserID(c)
			if _, err = engine.ToggleLike(postID, userID); err != nil {
				return writeError(c, err)
			}
			return c.Redirect("/")
		},
	)

	r.Post(
		"/post/:id/comment", guard, postCacheInvalidationMiddleware, func(c *fiber.Ctx) error {
			postID, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			var req commentReq
			if err = parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			userID, _ := session.UserID(c)
			if _, err = engine.AppendComment(postID, userID, req.Comment); err != nil {
				return writeError(c, err)
			}
			return c.Redirect("/")
		},
	)

	r.Post(
		"/post/:postId/comment/:commentId/delete", guard, postCacheInvalidationMiddleware,
		func(c *fiber.Ctx) error {
			postID, err := idParam(c, "postId", "post")
			if err != nil {
				return writeError(c, err)
			}
			commentID, err := idParam(c, "commentId", "comment")
			if err != nil {
				return writeError(c, err)
			}
			var req deleteCommentReq
			if err = parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			userID, _ := session.UserID(c)
			if err = engine.DeleteComment(postID, commentID, userID, req.Username); err != nil {
				return writeError(c, err)
			}
			return c.Redirect("/")
		},
	)
}

