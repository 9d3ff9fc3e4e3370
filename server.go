package quill

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServerConf configures where and how the blog is served
type ServerConf struct {
	IPListen string  `yaml:"ip_listen"`
	Port     int     `yaml:"port"`
	TLS      TLSConf `yaml:"tls"`

	// TrustedProxies enables reading the client ip from ForwardedIPHeader
	// for requests coming from these addresses
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`

	// AccessLog receives one line per request; nil means stdout
	AccessLog io.Writer `yaml:"-"`
}

// TLSConf holds the certificate used for https
type TLSConf struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
	// RedirectHTTP additionally listens on port 80 and redirects to https
	RedirectHTTP bool `yaml:"redirect_http"`
}

// addr is the listen address of the main server; without a port 443 is used
// for https and 80 otherwise
func (c ServerConf) addr() string {
	port := c.Port
	if port == 0 {
		port = 80
		if c.TLS.Enabled {
			port = 443
		}
	}
	return fmt.Sprintf("%s:%d", c.IPListen, port)
}

func (c ServerConf) fiberConfig() fiber.Config {
	config := FiberServerConfig
	if len(c.TrustedProxies) > 0 {
		config.TrustedProxies = c.TrustedProxies
		config.EnableTrustedProxyCheck = true
	}
	config.ProxyHeader = c.ForwardedIPHeader
	return config
}

// httpsRedirect answers every plain http request with a permanent redirect
// to the same url on https
func httpsRedirect() *fiber.App {
	app := fiber.New(FiberServerConfig)
	app.All(
		"*", func(ctx *fiber.Ctx) error {
			target := "https://" + strings.TrimPrefix(ctx.Request().URI().String(), "http://")
			return ctx.Redirect(target, fiber.StatusPermanentRedirect)
		},
	)
	return app
}
