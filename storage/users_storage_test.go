package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/storage/model"
)

func TestUsersStorage_CreateAndGet(t *testing.T) {
	users := newTestStorage(t).UsersStorage()

	u, err := users.Create("alice", "wonderland", false)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Empty(t, u.PasswordHash)
	assert.False(t, u.Admin)

	got, err := users.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	got, err = users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	exists, err := users.Exists("alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = users.Exists("bob")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = users.Get("bob")
	assert.True(t, isType[model.NotFoundError](err))
	_, err = users.GetByID(4711)
	assert.True(t, isType[model.NotFoundError](err))
}

func TestUsersStorage_CreateValidation(t *testing.T) {
	users := newTestStorage(t).UsersStorage()

	_, err := users.Create("", "pw", false)
	assert.True(t, isType[model.ValidationError](err))
	_, err = users.Create("alice", "", false)
	assert.True(t, isType[model.ValidationError](err))

	_, err = users.Create("alice", "pw", false)
	require.NoError(t, err)
	_, err = users.Create("alice", "other", true)
	assert.True(t, isType[model.AlreadyExistsError](err))

	count, err := users.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUsersStorage_Authenticate(t *testing.T) {
	users := newTestStorage(t).UsersStorage()
	_, err := users.Create("admin", "s3cret", true)
	require.NoError(t, err)

	u, err := users.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, u.Admin)
	assert.Empty(t, u.PasswordHash)

	_, err = users.Authenticate("admin", "wrong")
	assert.Error(t, err)
	_, err = users.Authenticate("nobody", "s3cret")
	assert.True(t, isType[model.NotFoundError](err))
}

func TestUsersStorage_AuthenticateUpgradesHash(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.UsersStorage().Create("alice", "pw", false)
	require.NoError(t, err)

	stronger := testHashParams
	stronger.Time = 2
	upgraded := &UsersStorage{db: s.db, params: stronger}
	_, err = upgraded.Authenticate("alice", "pw")
	require.NoError(t, err)

	var stored model.User
	require.NoError(t, s.db.Where("username = ?", "alice").First(&stored).Error)
	hash, err := parsePHCHash(stored.PasswordHash)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hash.params.Time)
	assert.False(t, hash.outdated(stronger))

	_, err = upgraded.Authenticate("alice", "pw")
	assert.NoError(t, err)
}

func TestUsersStorage_ListAndDelete(t *testing.T) {
	users := newTestStorage(t).UsersStorage()
	for _, name := range []string{"a", "b", "c"} {
		_, err := users.Create(name, "pw", false)
		require.NoError(t, err)
	}
	list, err := users.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, u := range list {
		assert.Empty(t, u.PasswordHash)
	}

	require.NoError(t, users.Delete("b"))
	err = users.Delete("b")
	assert.True(t, isType[model.NotFoundError](err))
	list, err = users.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPHCHash(t *testing.T) {
	hash, err := newPHCHash("pw", testHashParams)
	require.NoError(t, err)
	encoded := hash.String()
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	parsed, err := parsePHCHash(encoded)
	require.NoError(t, err)
	assert.Equal(t, testHashParams, parsed.params)
	assert.True(t, parsed.matches("pw"))
	assert.False(t, parsed.matches("PW"))
	assert.False(t, parsed.outdated(testHashParams))

	other, err := newPHCHash("pw", testHashParams)
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other.String())

	for _, bad := range []string{
		"not-a-hash",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		_, err = parsePHCHash(bad)
		assert.Error(t, err, bad)
	}
}

func TestUsersStorage_WrongPasswordIsUnauthorized(t *testing.T) {
	users := newTestStorage(t).UsersStorage()
	_, err := users.Create("alice", "pw", false)
	require.NoError(t, err)
	_, err = users.Authenticate("alice", "nope")
	assert.True(t, isType[model.UnauthorizedError](err))
}
