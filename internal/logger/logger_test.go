package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/cmd/quill/config"
)

func loadConfig(t *testing.T, yaml string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o600))
	config.Load(file)
	t.Cleanup(
		func() {
			log.SetOutput(os.Stderr)
			log.SetLevel(log.InfoLevel)
			accessWriter = os.Stdout
		},
	)
}

func TestInitWritesToLogDirs(t *testing.T) {
	internalDir := t.TempDir()
	accessDir := t.TempDir()
	loadConfig(
		t, fmt.Sprintf(
			`
logging:
  access:
    dir: %s
  internal:
    dir: %s
    level: warn
`, accessDir, internalDir,
		),
	)
	Init()

	assert.Equal(t, log.WarnLevel, log.GetLevel())
	log.Info("not written")
	log.Warn("disk almost full")
	_, err := AccessLogWriter().Write([]byte("GET /version 200\n"))
	require.NoError(t, err)

	internal, err := os.ReadFile(filepath.Join(internalDir, internalLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(internal), "disk almost full")
	assert.NotContains(t, string(internal), "not written")

	access, err := os.ReadFile(filepath.Join(accessDir, accessLogFile))
	require.NoError(t, err)
	assert.Equal(t, "GET /version 200\n", string(access))
}

func TestNewWriterWithoutDir(t *testing.T) {
	fallback := &bytes.Buffer{}
	assert.Same(t, fallback, newWriter("", accessLogFile, false, fallback))
	assert.Equal(t, os.Stderr, newWriter("", accessLogFile, true, fallback))
}

func TestNewWriterAppends(t *testing.T) {
	dir := t.TempDir()
	for _, line := range []string{"one\n", "two\n"} {
		_, err := newWriter(dir, internalLogFile, false, nil).Write([]byte(line))
		require.NoError(t, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, internalLogFile))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}
