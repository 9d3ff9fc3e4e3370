package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/storage"
	"github.com/quillblog/quill/storage/model"
)

type storageConf struct {
	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`
	storage.DSNConf `yaml:",inline"`
	Debug        bool                     `yaml:"debug"`
	PostsBackend storage.PostsBackendType `yaml:"posts_backend"`
	BadgerDir    string                   `yaml:"badger_dir"`
	UsersHash    storage.Argon2idParams   `yaml:"password_hashing"`
}

func (c *storageConf) validate() error {
	switch c.PostsBackend {
	case "":
		c.PostsBackend = storage.PostsBackendGorm
	case storage.PostsBackendGorm:
	case storage.PostsBackendBadger:
		if c.BadgerDir == "" {
			return errors.New("error in storage conf: badger_dir must be specified for the badger posts backend")
		}
	default:
		return errors.Errorf("error in storage conf: unknown posts_backend '%s'", c.PostsBackend)
	}

	if c.Driver == storage.DriverSQLite {
		if c.DataDir == "" && c.DSN == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverSQLite,
	DataDir: ".",
	DSNConf: storage.DSNConf{
		User: "quill",
		Host: "localhost",
		DB:   "quill",
	},
	PostsBackend: storage.PostsBackendGorm,
	UsersHash: storage.Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	},
}

// StorageConfig converts the storage section into a storage.Config
func (c storageConf) StorageConfig() storage.Config {
	return storage.Config{
		Driver:       c.Driver,
		DSN:          c.DSN,
		DataDir:      c.DataDir,
		Debug:        c.Debug,
		PostsBackend: c.PostsBackend,
		BadgerDir:    c.BadgerDir,
		UsersHash:    c.UsersHash,
	}
}

// LoadStorageBackends loads and returns the storage backends for the passed config
func LoadStorageBackends(c storageConf) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(c.StorageConfig())
	if err != nil {
		return model.Backends{}, err
	}
	log.WithFields(
		log.Fields{
			"driver":        c.Driver,
			"posts_backend": c.PostsBackend,
		},
	).Info("Loaded storage backend")
	return backs, nil
}
