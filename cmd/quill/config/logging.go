package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
)

// loggingConf is the `logging` section:
//
//	logging:
//	  access:
//	    dir: /var/log/quill
//	  internal:
//	    dir: /var/log/quill
//	    stderr: true
//	    level: debug
type loggingConf struct {
	Access   LoggerConf         `yaml:"access"`
	Internal internalLoggerConf `yaml:"internal"`
}

type internalLoggerConf struct {
	LoggerConf `yaml:",inline"`
	// Level is any level logrus can parse
	Level string `yaml:"level"`
}

// LoggerConf selects where a log is written. Without a Dir the log goes to
// stdout; StdErr additionally copies it to stderr.
type LoggerConf struct {
	Dir    string `yaml:"dir"`
	StdErr bool   `yaml:"stderr"`
}

func (l LoggerConf) validate(name string) error {
	if l.Dir == "" || fileutils.FileExists(l.Dir) {
		return nil
	}
	return errors.Errorf("error in logging conf: %s log dir '%s' does not exist", name, l.Dir)
}

func (l *loggingConf) validate() error {
	if err := l.Access.validate("access"); err != nil {
		return err
	}
	if err := l.Internal.validate("internal"); err != nil {
		return err
	}
	if _, err := log.ParseLevel(l.Internal.Level); err != nil {
		return errors.Wrap(err, "error in logging conf")
	}
	return nil
}

var defaultLoggingConf = loggingConf{
	Internal: internalLoggerConf{
		Level: "info",
	},
}
