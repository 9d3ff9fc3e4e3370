// Package logger sets up the internal and the access log.
package logger

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/cmd/quill/config"
)

const (
	internalLogFile = "quill.log"
	accessLogFile   = "access.log"
)

var accessWriter io.Writer = os.Stdout

// Init initializes the logger from the loaded config
func Init() {
	c := config.Get().Logging
	log.SetFormatter(
		&log.TextFormatter{
			DisableColors:   c.Internal.Dir != "",
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	)
	if level, err := log.ParseLevel(c.Internal.Level); err == nil {
		log.SetLevel(level)
	}
	log.SetOutput(newWriter(c.Internal.Dir, internalLogFile, c.Internal.StdErr, os.Stderr))
	accessWriter = newWriter(c.Access.Dir, accessLogFile, c.Access.StdErr, os.Stdout)
}

// AccessLogWriter returns the writer for the access log
func AccessLogWriter() io.Writer {
	return accessWriter
}

// newWriter returns a writer for dir/name; with stderr set it additionally
// writes to stderr. Without a dir fallback is used.
func newWriter(dir, name string, stderr bool, fallback io.Writer) io.Writer {
	if dir == "" {
		if stderr {
			return os.Stderr
		}
		return fallback
	}
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		log.WithError(err).Fatal("could not open log file")
	}
	if stderr {
		return io.MultiWriter(file, os.Stderr)
	}
	return file
}
