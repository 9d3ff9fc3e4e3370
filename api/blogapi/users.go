package blogapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage/model"
)

// registerUsers wires the admin-only user management routes
func registerUsers(r fiber.Router, users model.UsersStore, guard, admin fiber.Handler) {
	g := r.Group("/users", guard, admin)

	g.Get(
		"/", func(c *fiber.Ctx) error {
			list, err := users.List()
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(list)
		},
	)

	g.Get(
		"/:username", func(c *fiber.Ctx) error {
			u, err := users.Get(c.Params("username"))
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(u)
		},
	)

	g.Delete(
		"/:username", func(c *fiber.Ctx) error {
			username := c.Params("username")
			u, err := users.Get(username)
			if err != nil {
				return writeError(c, err)
			}
			if self, _ := session.UserID(c); self == u.ID {
				return writeError(c, model.ForbiddenError("cannot delete your own account"))
			}
			if err = users.Delete(username); err != nil {
				return writeError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
