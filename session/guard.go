package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/storage/model"
)

// DefaultCookieName is the name of the session cookie
const DefaultCookieName = "token"

const localsUserID = "quill_user_id"

// CookieConf configures the session cookie
type CookieConf struct {
	Name   string
	Secure bool
	// MaxAge of 0 creates a browser session cookie
	MaxAge time.Duration
}

func (conf CookieConf) name() string {
	if conf.Name == "" {
		return DefaultCookieName
	}
	return conf.Name
}

// SetCookie stores token in the HTTP-only session cookie
func SetCookie(c *fiber.Ctx, conf CookieConf, token string) {
	cookie := &fiber.Cookie{
		Name:     conf.name(),
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   conf.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if conf.MaxAge > 0 {
		cookie.MaxAge = int(conf.MaxAge.Seconds())
	}
	c.Cookie(cookie)
}

// ClearCookie expires the session cookie
func ClearCookie(c *fiber.Ctx, conf CookieConf) {
	c.Cookie(
		&fiber.Cookie{
			Name:     conf.name(),
			Value:    "",
			Path:     "/",
			HTTPOnly: true,
			Secure:   conf.Secure,
			Expires:  time.Unix(0, 0),
			SameSite: fiber.CookieSameSiteLaxMode,
		},
	)
}

// Guard returns a middleware that only lets requests with a valid session
// cookie through. The verified user id is available via UserID afterwards.
func Guard(codec *Codec, conf CookieConf) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(conf.name())
		if token == "" {
			return reject(c, model.UnauthorizedError("no session"))
		}
		id, err := codec.Verify(token)
		if err != nil {
			return reject(c, err)
		}
		c.Locals(localsUserID, id)
		return c.Next()
	}
}

// RequireAdmin must run after Guard; it only lets the admin user through
func RequireAdmin(users model.UsersStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return reject(c, model.UnauthorizedError("no session"))
		}
		u, err := users.GetByID(id)
		if err != nil {
			if _, notFound := errors.Cause(err).(model.NotFoundError); notFound {
				return reject(c, model.UnauthorizedError("session user does not exist"))
			}
			log.WithError(err).Error("could not load session user")
			return c.Status(fiber.StatusInternalServerError).JSON(
				fiber.Map{
					"error":             "server_error",
					"error_description": "internal server error",
				},
			)
		}
		if !u.Admin {
			return reject(c, model.ForbiddenError("admin privileges required"))
		}
		return c.Next()
	}
}

// UserID returns the user id that Guard attached to the request
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localsUserID).(uint)
	return id, ok && id != 0
}

func reject(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	code := "unauthorized"
	switch errors.Cause(err).(type) {
	case model.InvalidTokenError:
		code = "invalid_token"
	case model.ForbiddenError:
		status = fiber.StatusForbidden
		code = "forbidden"
	}
	log.WithError(err).WithField("path", c.Path()).Debug("rejected request")
	return c.Status(status).JSON(
		fiber.Map{
			"error":             code,
			"error_description": err.Error(),
		},
	)
}
