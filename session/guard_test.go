package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/storage/model"
)

type staticUsers struct {
	model.UsersStore
	users map[uint]model.User
}

func (s staticUsers) GetByID(id uint) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, model.NotFoundErrorFmt("user not found: %d", id)
	}
	return &u, nil
}

func newGuardedApp(t *testing.T, conf CookieConf) (*fiber.App, *Codec) {
	t.Helper()
	codec := newTestCodec(t)
	users := staticUsers{
		users: map[uint]model.User{
			1: {ID: 1, Username: "admin", Admin: true},
			2: {ID: 2, Username: "reader"},
		},
	}
	app := fiber.New()
	guard := Guard(codec, conf)
	app.Get(
		"/me", guard, func(c *fiber.Ctx) error {
			id, ok := UserID(c)
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.JSON(fiber.Map{"id": id})
		},
	)
	app.Get(
		"/admin-only", guard, RequireAdmin(users), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
	app.Get(
		"/login/:id", func(c *fiber.Ctx) error {
			id, _ := c.ParamsInt("id")
			token, err := codec.Issue(uint(id))
			if err != nil {
				return err
			}
			SetCookie(c, conf, token)
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
	app.Get(
		"/logout", func(c *fiber.Ctx) error {
			ClearCookie(c, conf)
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
	return app, codec
}

func doRequest(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestGuard(t *testing.T) {
	app, codec := newGuardedApp(t, CookieConf{})

	resp := doRequest(t, app, "/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", errorCode(t, resp))

	resp = doRequest(t, app, "/me", &http.Cookie{Name: DefaultCookieName, Value: "garbage"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", errorCode(t, resp))

	token, err := codec.Issue(2)
	require.NoError(t, err)
	resp = doRequest(t, app, "/me", &http.Cookie{Name: DefaultCookieName, Value: token})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]uint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body["id"])
}

func TestRequireAdmin(t *testing.T) {
	app, codec := newGuardedApp(t, CookieConf{})
	cookie := func(id uint) *http.Cookie {
		token, err := codec.Issue(id)
		require.NoError(t, err)
		return &http.Cookie{Name: DefaultCookieName, Value: token}
	}

	assert.Equal(t, fiber.StatusNoContent, doRequest(t, app, "/admin-only", cookie(1)).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, doRequest(t, app, "/admin-only", cookie(2)).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "/admin-only", cookie(99)).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "/admin-only", nil).StatusCode)
}

func TestCookieAttributes(t *testing.T) {
	conf := CookieConf{Name: "sess", Secure: true, MaxAge: time.Hour}
	app, _ := newGuardedApp(t, conf)

	resp := doRequest(t, app, "/login/2", nil)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sess", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)

	resp = doRequest(t, app, "/me", c)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "/logout", nil)
	cookies = resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}
