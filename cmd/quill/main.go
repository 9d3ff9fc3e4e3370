package main

import (
	"os"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill"
	"github.com/quillblog/quill/api/blogapi"
	"github.com/quillblog/quill/cmd/quill/config"
	"github.com/quillblog/quill/internal/cache"
	"github.com/quillblog/quill/internal/logger"
	"github.com/quillblog/quill/internal/version"
	"github.com/quillblog/quill/session"
	"github.com/quillblog/quill/storage"
	"github.com/quillblog/quill/storage/model"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	logger.Init()
	log.WithField("version", version.String()).Info("Loaded Config")
	c := config.Get()

	initCache(c)

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.Fatal(err)
	}

	secret, err := loadSecret(c, backs.KV)
	if err != nil {
		log.WithError(err).Fatal("could not load session secret")
	}
	codec, err := session.NewCodec(secret)
	if err != nil {
		log.Fatal(err)
	}
	log.Info("Loaded session secret")

	serverConf := c.Server
	serverConf.AccessLog = logger.AccessLogWriter()
	q, err := quill.NewQuill(
		serverConf, codec, backs, &blogapi.Options{
			Cookie:       c.Session.CookieConf(),
			PostLifetime: c.Caching.PostLifetime.Duration(),
		},
	)
	if err != nil {
		log.Fatal(err)
	}
	log.Info("Added Endpoints")

	q.Start()
}

func initCache(c *config.Config) {
	switch {
	case c.Caching.Disabled:
		cache.Disable()
		log.Info("Caching disabled")
	case c.Caching.RedisAddr != "":
		if err := cache.UseRedisCache(
			&redis.Options{
				Addr:     c.Caching.RedisAddr,
				Username: c.Caching.Username,
				Password: c.Caching.Password,
				DB:       c.Caching.RedisDB,
			},
		); err != nil {
			log.WithError(err).Fatal("could not init redis cache")
		}
		log.Info("Loaded Redis Cache")
	default:
		cache.UseMemoryCache()
		log.Info("Loaded in-memory cache")
	}
}

// loadSecret returns the configured session secret. Without one, the secret
// kept in the database is used and created on first start.
func loadSecret(c *config.Config, kv model.KeyValueStore) ([]byte, error) {
	if s := c.Session.Secret; s != "" {
		return []byte(s), nil
	}
	return storage.LoadOrCreateSessionSecret(kv)
}
