// Package blogapi contains the HTTP routes of the blog: sessions, reading,
// engagement and post administration.
package blogapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/quillblog/quill/engagement"
	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage/model"
)

// DefaultPostLifetime is how long a post document stays cached if no
// lifetime is configured
const DefaultPostLifetime = time.Minute

// Options controls optional features of the blog API registration.
type Options struct {
	// Cookie configures the session cookie
	Cookie session.CookieConf
	// PostLifetime is the cache lifetime of a single post; negative
	// values disable caching of posts
	PostLifetime time.Duration
}

// Register mounts all blog routes on the provided router.
func Register(r fiber.Router, codec *session.Codec, storages model.Backends, opts *Options) error {
	if codec == nil {
		return errors.New("blogapi: session codec is required")
	}
	if storages.Users == nil || storages.Posts == nil {
		return errors.New("blogapi: users and posts storage are required")
	}
	if opts == nil {
		opts = &Options{}
	}
	lifetime := opts.PostLifetime
	if lifetime == 0 {
		lifetime = DefaultPostLifetime
	}

	guard := session.Guard(codec, opts.Cookie)
	admin := session.RequireAdmin(storages.Users)
	engine := engagement.NewEngine(storages.Posts, storages.Users)

	registerAuth(r, codec, storages.Users, opts.Cookie)
	registerReading(r, storages.Posts, guard, lifetime)
	registerEngagement(r, engine, guard)
	registerPostAdministration(r, storages.Posts, guard, admin)
	registerUsers(r, storages.Users, guard, admin)
	return nil
}
