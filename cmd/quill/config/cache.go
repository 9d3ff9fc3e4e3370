package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"
)

type cachingConf struct {
	RedisAddr    string                  `yaml:"redis_addr"`
	Username     string                  `yaml:"username"`
	Password     string                  `yaml:"password"`
	RedisDB      int                     `yaml:"redis_db"`
	Disabled     bool                    `yaml:"disabled"`
	PostLifetime duration.DurationOption `yaml:"post_lifetime"`
}

var defaultCachingConf = cachingConf{
	PostLifetime: duration.DurationOption(time.Minute),
}

func (c *cachingConf) validate() error {
	if c.PostLifetime.Duration() < 0 {
		return errors.New("error in caching conf: post_lifetime must not be negative")
	}
	return nil
}
