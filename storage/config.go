package storage

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillblog/quill/storage/badgerstore"
	"github.com/quillblog/quill/storage/model"
)

// DriverType names a relational database driver
type DriverType string

// Supported database drivers
const (
	DriverSQLite   DriverType = "sqlite"
	DriverMySQL    DriverType = "mysql"
	DriverPostgres DriverType = "postgres"
)

// PostsBackendType selects where post aggregates are stored
type PostsBackendType string

const (
	// PostsBackendGorm keeps posts, comments and likes in three tables of the
	// relational database
	PostsBackendGorm PostsBackendType = "gorm"
	// PostsBackendBadger keeps each post with its comments and likes as one
	// badger document
	PostsBackendBadger PostsBackendType = "badger"
)

// DSNConf holds the connection parameters from which a dsn is built for the
// network databases
type DSNConf struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
}

// Config configures the storage layer
type Config struct {
	Driver DriverType `yaml:"driver"`
	// DSN is passed to the driver as is. For sqlite it is the database file;
	// if empty, quill.db in DataDir is used.
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
	// Debug logs all sql statements
	Debug bool `yaml:"debug"`

	PostsBackend PostsBackendType `yaml:"posts_backend"`
	// BadgerDir is only used with PostsBackendBadger
	BadgerDir string `yaml:"badger_dir"`

	UsersHash Argon2idParams `yaml:"password_hashing"`
}

// Argon2idParams are the cost parameters for password hashes
type Argon2idParams struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	KeyLen      uint32 `yaml:"key_len"`
	SaltLen     uint32 `yaml:"salt_len"`
}

type networkDriver struct {
	defaultPort int
	dsn         func(c DSNConf) string
	open        func(dsn string) gorm.Dialector
}

var networkDrivers = map[DriverType]networkDriver{
	DriverMySQL: {
		defaultPort: 3306,
		dsn: func(c DSNConf) string {
			return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True", c.User, c.Password, c.Host, c.Port, c.DB)
		},
		open: mysql.Open,
	},
	DriverPostgres: {
		defaultPort: 5432,
		dsn: func(c DSNConf) string {
			return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", c.Host, c.User, c.Password, c.DB, c.Port)
		},
		open: postgres.Open,
	},
}

// DSN builds the connection string of a network database driver
func DSN(driver DriverType, conf DSNConf) (string, error) {
	d, ok := networkDrivers[driver]
	if !ok {
		return "", errors.Errorf("cannot build a dsn for driver '%s'", driver)
	}
	if conf.Port == 0 {
		conf.Port = d.defaultPort
	}
	return d.dsn(conf), nil
}

func dialector(cfg Config) (gorm.Dialector, error) {
	if cfg.Driver == DriverSQLite {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.DataDir, "quill.db")
		}
		return sqlite.Open(dsn), nil
	}
	d, ok := networkDrivers[cfg.Driver]
	if !ok {
		return nil, errors.Errorf("unsupported database driver '%s'", cfg.Driver)
	}
	return d.open(cfg.DSN), nil
}

// Connect opens the configured database. Driver errors are translated to
// gorm errors, so duplicate keys surface as gorm.ErrDuplicatedKey.
func Connect(cfg Config) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(
		dial, &gorm.Config{
			Logger:         gormLogger,
			TranslateError: true,
		},
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if cfg.Driver == DriverSQLite {
		// a single connection queues writers instead of failing with SQLITE_BUSY
		pool, err := db.DB()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		pool.SetMaxOpenConns(1)
	}
	return db, nil
}

// LoadStorageBackends opens the database and returns the configured stores
func LoadStorageBackends(cfg Config) (model.Backends, error) {
	s, err := NewStorage(cfg)
	if err != nil {
		return model.Backends{}, err
	}
	backends := model.Backends{
		Users: s.UsersStorage(),
		Posts: s.PostsStorage(),
		KV:    s.KeyValue(),
	}
	if cfg.PostsBackend != PostsBackendBadger {
		return backends, nil
	}
	posts, err := badgerstore.Open(cfg.BadgerDir)
	if err != nil {
		return model.Backends{}, err
	}
	backends.Posts = posts
	log.WithField("dir", cfg.BadgerDir).Info("Using badger posts storage")
	return backends, nil
}
