package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/quillblog/quill/session"
)

// sessionConf configures the session cookie. If no secret is configured one
// is generated on first start and kept in the database.
type sessionConf struct {
	Secret       string                  `yaml:"secret"`
	CookieName   string                  `yaml:"cookie_name"`
	CookieSecure bool                    `yaml:"cookie_secure"`
	CookieMaxAge duration.DurationOption `yaml:"cookie_max_age"`
}

var defaultSessionConf = sessionConf{
	CookieName:   session.DefaultCookieName,
	CookieMaxAge: duration.DurationOption(7 * 24 * time.Hour),
}

func (c *sessionConf) validate() error {
	if c.Secret != "" && len(c.Secret) < session.MinSecretLen {
		return errors.Errorf("error in session conf: secret must be at least %d bytes", session.MinSecretLen)
	}
	if c.CookieName == "" {
		c.CookieName = session.DefaultCookieName
	}
	return nil
}

// CookieConf returns the session.CookieConf for this configuration
func (c sessionConf) CookieConf() session.CookieConf {
	return session.CookieConf{
		Name:   c.CookieName,
		Secure: c.CookieSecure,
		MaxAge: c.CookieMaxAge.Duration(),
	}
}
