package blogapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/internal/cache"
)

func postCacheKey(postID string) string {
	return cache.Key(cache.KeyPost, postID)
}

// postCacheInvalidationMiddleware clears the cached post document for
// requests that successfully modify a post, its comments or its likes.
// It should be attached only to non-GET routes that carry the post id as
// :id or :postId.
func postCacheInvalidationMiddleware(c *fiber.Ctx) error {
	if err := c.Next(); err != nil {
		return err
	}
	status := c.Response().StatusCode()
	if status < 200 || status >= 400 {
		return nil
	}
	raw := c.Params("id")
	if raw == "" {
		raw = c.Params("postId")
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return nil
	}
	postID := strconv.FormatUint(id, 10)
	if err = cache.Invalidate(postCacheKey(postID)); err != nil {
		log.WithError(err).WithField("post", postID).Warn("could not invalidate cached post")
	}
	return nil
}
