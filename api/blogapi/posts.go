package blogapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/internal/cache"
	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage/model"
)

type postReq struct {
	Title *string `json:"title" form:"title"`
	Body  *string `json:"body" form:"body"`
}

// postView is a post as seen by one reader
type postView struct {
	model.Post
	LikeCount int  `json:"like_count"`
	Liked     bool `json:"liked"`
}

// loadPost returns the post aggregate, served from the cache when possible
func loadPost(posts model.PostsStore, id uint, lifetime time.Duration) (*model.Post, error) {
	key := postCacheKey(strconv.FormatUint(uint64(id), 10))
	var cached model.Post
	found, err := cache.Get(key, &cached)
	if err != nil {
		log.WithError(err).Warn("could not read post from cache")
	}
	if found {
		return &cached, nil
	}
	gen := cache.Generation(key)
	p, err := posts.Get(id)
	if err != nil {
		return nil, err
	}
	if lifetime > 0 {
		stored, err := cache.SetIfUnchanged(key, gen, p, lifetime)
		if err != nil {
			log.WithError(err).Warn("could not cache post")
		} else if !stored {
			log.WithField("post", id).Debug("post changed while loading, not caching it")
		}
	}
	return p, nil
}

// registerReading wires the routes every logged-in user may use
func registerReading(r fiber.Router, posts model.PostsStore, guard fiber.Handler, lifetime time.Duration) {
	r.Get(
		"/posts", guard, func(c *fiber.Ctx) error {
			list, err := posts.List()
			if err != nil {
				return writeError(c, err)
			}
			if list == nil {
				list = []model.Post{}
			}
			return c.JSON(list)
		},
	)

	r.Get(
		"/post/:id", guard, func(c *fiber.Ctx) error {
			id, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			p, err := loadPost(posts, id, lifetime)
			if err != nil {
				return writeError(c, err)
			}
			userID, _ := session.UserID(c)
			return c.JSON(
				postView{
					Post:      *p,
					LikeCount: p.LikeCount(),
					Liked:     p.LikedBy(userID),
				},
			)
		},
	)
}

// registerPostAdministration wires the admin-only post management routes
func registerPostAdministration(r fiber.Router, posts model.PostsStore, guard, admin fiber.Handler) {
	r.Get(
		"/dashboard", guard, admin, func(c *fiber.Ctx) error {
			list, err := posts.List()
			if err != nil {
				return writeError(c, err)
			}
			if list == nil {
				list = []model.Post{}
			}
			return c.JSON(list)
		},
	)

	r.Post(
		"/add-post", guard, admin, func(c *fiber.Ctx) error {
			var req postReq
			if err := parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
				return writeError(c, model.ValidationError("title is required"))
			}
			var body string
			if req.Body != nil {
				body = *req.Body
			}
			p, err := posts.Create(*req.Title, body)
			if err != nil {
				return writeError(c, err)
			}
			log.WithField("post", p.ID).Info("created post")
			return c.Redirect("/dashboard")
		},
	)

	r.Get(
		"/edit-post/:id", guard, admin, func(c *fiber.Ctx) error {
			id, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			p, err := posts.Get(id)
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(p)
		},
	)

	r.Put(
		"/edit-post/:id", guard, admin, postCacheInvalidationMiddleware, func(c *fiber.Ctx) error {
			id, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			var req postReq
			if err = parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
				return writeError(c, model.ValidationError("title must not be empty"))
			}
			if _, err = posts.Update(id, req.Title, req.Body); err != nil {
				return writeError(c, err)
			}
			return c.Redirect(fmt.Sprintf("/edit-post/%d", id))
		},
	)

	r.Delete(
		"/delete-post/:id", guard, admin, postCacheInvalidationMiddleware, func(c *fiber.Ctx) error {
			id, err := idParam(c, "id", "post")
			if err != nil {
				return writeError(c, err)
			}
			if err = posts.Delete(id); err != nil {
				return writeError(c, err)
			}
			log.WithField("post", id).Info("deleted post")
			return c.Redirect("/dashboard")
		},
	)
}
