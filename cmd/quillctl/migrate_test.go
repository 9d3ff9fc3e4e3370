package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/cmd/quill/config"
	"github.com/quillblog/quill/storage"
	"github.com/quillblog/quill/storage/badgerstore"
	"github.com/quillblog/quill/storage/model"
)

func newGormPosts(t *testing.T, dataDir string) *storage.PostsStorage {
	t.Helper()
	s, err := storage.NewStorage(
		storage.Config{
			Driver:  storage.DriverSQLite,
			DataDir: dataDir,
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s.PostsStorage()
}

func seedPosts(t *testing.T, posts model.PostsStore) []*model.Post {
	t.Helper()
	var seeded []*model.Post
	for i := 1; i <= 3; i++ {
		p, err := posts.Create(fmt.Sprintf("post %d", i), "body")
		require.NoError(t, err)
		_, err = posts.ToggleLike(p.ID, uint(i))
		require.NoError(t, err)
		_, err = posts.AppendComment(p.ID, model.Comment{UserID: uint(i), Username: "reader", Text: "first"})
		require.NoError(t, err)
		_, err = posts.AppendComment(p.ID, model.Comment{UserID: uint(i), Username: "reader", Text: "second"})
		require.NoError(t, err)
		seeded = append(seeded, p)
	}
	return seeded
}

func assertMigrated(t *testing.T, seeded []*model.Post, dst model.PostsStore) {
	t.Helper()
	for i, p := range seeded {
		got, err := dst.Get(p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Title, got.Title)
		assert.True(t, got.LikedBy(uint(i+1)))
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "first", got.Comments[0].Text)
		assert.Equal(t, "second", got.Comments[1].Text)
	}
}

func TestMigratePostsGormToBadgerAndBack(t *testing.T) {
	src := newGormPosts(t, t.TempDir())
	seeded := seedPosts(t, src)

	badger, err := badgerstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = badger.Close() })
	n, err := migratePosts(src, badger)
	require.NoError(t, err)
	assert.Equal(t, len(seeded), n)
	assertMigrated(t, seeded, badger)

	back := newGormPosts(t, t.TempDir())
	n, err = migratePosts(badger, back)
	require.NoError(t, err)
	assert.Equal(t, len(seeded), n)
	assertMigrated(t, seeded, back)

	fresh, err := back.Create("after migration", "body")
	require.NoError(t, err)
	assert.Greater(t, fresh.ID, seeded[len(seeded)-1].ID)
}

func TestMigratePostsStopsOnConflict(t *testing.T) {
	src := newGormPosts(t, t.TempDir())
	seedPosts(t, src)
	dst := newGormPosts(t, t.TempDir())

	_, err := migratePosts(src, dst)
	require.NoError(t, err)
	_, err = migratePosts(src, dst)
	assert.ErrorContains(t, err, "could not import post")
}

func TestOpenPostsBackend(t *testing.T) {
	_, _, err := openPostsBackend("mongo", "")
	assert.Error(t, err)
	_, _, err = openPostsBackend(storage.PostsBackendBadger, "")
	assert.Error(t, err)

	dst, closeDst, err := openPostsBackend(storage.PostsBackendBadger, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, dst.Import(model.Post{ID: 7, Title: "imported"}))
	closeDst()

	file := filepath.Join(t.TempDir(), "config.yaml")
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  data_dir: "+dataDir+"\n"), 0o600))
	config.Load(file)
	dst, closeDst, err = openPostsBackend(storage.PostsBackendGorm, "")
	require.NoError(t, err)
	require.NoError(t, dst.Import(model.Post{ID: 7, Title: "imported"}))
	closeDst()

	got, err := newGormPosts(t, dataDir).Get(7)
	require.NoError(t, err)
	assert.Equal(t, "imported", got.Title)
}
