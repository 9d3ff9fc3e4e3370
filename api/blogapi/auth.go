package blogapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage/model"
)

type credentialsReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// registerAuth wires login, logout and registration
func registerAuth(r fiber.Router, codec *session.Codec, users model.UsersStore, cookie session.CookieConf) {
	r.Post(
		"/admin", func(c *fiber.Ctx) error {
			var req credentialsReq
			if err := parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			u, err := users.Authenticate(req.Username, req.Password)
			if err != nil {
				switch errors.Cause(err).(type) {
				case model.NotFoundError, model.UnauthorizedError:
					log.WithField("username", req.Username).Debug("failed login")
					return c.Status(fiber.StatusUnauthorized).JSON(
						errorBody("invalid_credentials", "Invalid credentials"),
					)
				default:
					return writeError(c, err)
				}
			}
			token, err := codec.Issue(u.ID)
			if err != nil {
				return writeError(c, err)
			}
			session.SetCookie(c, cookie, token)
			if u.Admin {
				return c.Redirect("/dashboard")
			}
			return c.Redirect("/")
		},
	)

	r.Post(
		"/register", func(c *fiber.Ctx) error {
			var req credentialsReq
			if err := parseBody(c, &req); err != nil {
				return writeError(c, err)
			}
			req.Username = strings.TrimSpace(req.Username)
			if req.Username == "" || req.Password == "" {
				return writeError(c, model.ValidationError("username and password are required"))
			}
			u, err := users.Create(req.Username, req.Password, false)
			if err != nil {
				return writeError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(
				fiber.Map{
					"message": "User Created",
					"user":    u,
				},
			)
		},
	)

	r.Get(
		"/logout", func(c *fiber.Ctx) error {
			session.ClearCookie(c, cookie)
			return c.Redirect("/")
		},
	)
}
