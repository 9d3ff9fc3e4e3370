// Package quill wires the blog's HTTP server: middlewares, the blog API and
// server startup.
package quill

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/api/blogapi"
	"github.com/quillblog/quill/internal/version"
	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage/model"
)

// Quill is the blog server
type Quill struct {
	server     *fiber.App
	serverConf ServerConf
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// handleError answers errors that escaped the handlers, e.g. unknown routes
func handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	description := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		description = e.Message
	} else {
		log.WithError(err).Error("unhandled error")
	}
	return ctx.Status(code).JSON(
		fiber.Map{
			"error":             strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_")),
			"error_description": description,
		},
	)
}

// NewQuill creates a new Quill serving the blog API
func NewQuill(
	serverConf ServerConf, codec *session.Codec, storages model.Backends, opts *blogapi.Options,
) (*Quill, error) {
	server := fiber.New(serverConf.fiberConfig())
	server.Use(recover.New())
	server.Use(compress.New())
	loggerConf := logger.Config{}
	if serverConf.AccessLog != nil {
		loggerConf.Output = serverConf.AccessLog
	}
	server.Use(logger.New(loggerConf))
	server.Use(requestid.New())

	server.Get(
		"/version", func(ctx *fiber.Ctx) error {
			return ctx.JSON(fiber.Map{"version": version.VERSION})
		},
	)
	if err := blogapi.Register(server, codec, storages, opts); err != nil {
		return nil, err
	}
	return &Quill{
		server:     server,
		serverConf: serverConf,
	}, nil
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (q Quill) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(q.server)
}

// Test sends req through the server without opening a socket
func (q Quill) Test(req *http.Request) (*http.Response, error) {
	return q.server.Test(req, -1)
}

// Listen starts an http server at the specific address
func (q Quill) Listen(addr string) error {
	return q.server.Listen(addr)
}

// Shutdown gracefully stops the server
func (q Quill) Shutdown() error {
	return q.server.Shutdown()
}

// Start starts the server as configured and blocks
func (q Quill) Start() {
	conf := q.serverConf
	addr := conf.addr()
	if !conf.TLS.Enabled {
		log.WithField("addr", addr).Info("TLS is disabled, starting http server")
		log.WithError(q.server.Listen(addr)).Fatal()
	}
	if conf.TLS.RedirectHTTP {
		redirectAddr := fmt.Sprintf("%s:80", conf.IPListen)
		log.WithField("addr", redirectAddr).Info("Starting http to https redirect server")
		go func() {
			log.WithError(httpsRedirect().Listen(redirectAddr)).Fatal()
		}()
	}
	log.WithField("addr", addr).Info("TLS enabled, starting https server")
	log.WithError(q.server.ListenTLS(addr, conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
