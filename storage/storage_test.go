package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var testHashParams = Argon2idParams{
	Time:        1,
	MemoryKiB:   1024,
	Parallelism: 1,
	KeyLen:      32,
	SaltLen:     16,
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(
		Config{
			Driver:    DriverSQLite,
			DataDir:   t.TempDir(),
			UsersHash: testHashParams,
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func isType[T error](err error) bool {
	_, ok := errors.Cause(err).(T)
	return ok
}
