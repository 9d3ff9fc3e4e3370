// Package config loads and validates the quill server configuration.
package config

import (
	"os"
	"path/filepath"
	"reflect"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	"github.com/quillblog/quill"
)

// Config holds the complete server configuration
type Config struct {
	Server  quill.ServerConf `yaml:"server"`
	Storage storageConf      `yaml:"storage"`
	Session sessionConf      `yaml:"session"`
	Caching cachingConf      `yaml:"caching"`
	Logging loggingConf      `yaml:"logging"`
}

type configValidator interface {
	validate() error
}

var conf *Config

// Get returns the loaded config
func Get() *Config {
	return conf
}

var possibleConfigLocations = []string{
	".",
	"config",
	"/config",
	"/etc/quill",
}

func defaultConfig() *Config {
	return &Config{
		Server: quill.ServerConf{
			Port: 8080,
		},
		Storage: defaultStorageConf,
		Session: defaultSessionConf,
		Caching: defaultCachingConf,
		Logging: defaultLoggingConf,
	}
}

// Load reads the config file and validates it. If filename is empty the
// default locations are searched for a config.yaml. Invalid configuration is
// fatal.
func Load(filename string) {
	if filename == "" {
		filename = findConfigFile()
	}
	var data []byte
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			log.WithError(err).Fatal("could not read config file")
		}
	} else {
		log.Warn("no config file found, using defaults")
	}
	c, err := Parse(data)
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	conf = c
}

// Parse parses and validates the passed yaml config
func Parse(data []byte) (*Config, error) {
	c := defaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "could not parse config")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func findConfigFile() string {
	for _, dir := range possibleConfigLocations {
		for _, name := range []string{"config.yaml", "config.yml"} {
			p := filepath.Join(dir, name)
			if fileutils.FileExists(p) {
				return p
			}
		}
	}
	return ""
}

func (c *Config) validate() error {
	if tls := c.Server.TLS; tls.Enabled && (tls.Cert == "" || tls.Key == "") {
		return errors.New("error in server conf: tls.cert and tls.key must be specified if tls is enabled")
	}
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		if !fieldVal.CanAddr() {
			continue
		}
		if validator, ok := fieldVal.Addr().Interface().(configValidator); ok {
			if err := validator.validate(); err != nil {
				return errors.Errorf("validation failed for field '%s': %s", t.Field(i).Name, err.Error())
			}
		}
	}
	return nil
}
