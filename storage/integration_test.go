package storage

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/storage/model"
)

func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
}

// exerciseBackend runs one engagement round trip against a freshly migrated
// database
func exerciseBackend(t *testing.T, config Config) {
	t.Helper()
	s, err := NewStorage(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	users := s.UsersStorage()
	posts := s.PostsStorage()

	u, err := users.Create("integration-"+t.Name(), "secret", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Delete(u.Username) })

	p, err := posts.Create("integration", "body")
	require.NoError(t, err)
	t.Cleanup(func() { _ = posts.Delete(p.ID) })

	liked, err := posts.ToggleLike(p.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	c, err := posts.AppendComment(p.ID, model.Comment{UserID: u.ID, Username: u.Username, Text: "hi"})
	require.NoError(t, err)

	got, err := posts.Get(p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c.ID, got.Comments[0].ID)

	require.NoError(t, posts.DeleteComment(p.ID, c.ID))
	liked, err = posts.ToggleLike(p.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	exerciseCreateAfterImport(t, posts)
}

// exerciseCreateAfterImport imports posts with explicit ids and checks that
// new posts get fresh ids afterwards
func exerciseCreateAfterImport(t *testing.T, posts *PostsStorage) {
	t.Helper()
	now := time.Now()
	for _, id := range []uint{900001, 900002} {
		require.NoError(
			t, posts.Import(
				model.Post{
					ID:        id,
					Title:     "imported",
					CreatedAt: now,
					UpdatedAt: now,
				},
			),
		)
		t.Cleanup(func() { _ = posts.Delete(id) })
	}
	p, err := posts.Create("fresh", "body")
	require.NoError(t, err)
	t.Cleanup(func() { _ = posts.Delete(p.ID) })
	assert.Greater(t, p.ID, uint(900002))
}

// TestSQLiteConnection tests connecting to a SQLite database
func TestSQLiteConnection(t *testing.T) {
	requireIntegration(t)

	db, err := Connect(
		Config{
			Driver:  DriverSQLite,
			DataDir: t.TempDir(),
		},
	)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

// TestMySQLBackend runs the storage against a MySQL database
func TestMySQLBackend(t *testing.T) {
	requireIntegration(t)
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL test. Set MYSQL_DSN environment variable")
	}
	exerciseBackend(
		t, Config{
			Driver: DriverMySQL,
			DSN:    dsn,
		},
	)
}

// TestPostgresBackend runs the storage against a PostgreSQL database
func TestPostgresBackend(t *testing.T) {
	requireIntegration(t)
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test. Set POSTGRES_DSN environment variable")
	}
	exerciseBackend(
		t, Config{
			Driver: DriverPostgres,
			DSN:    dsn,
		},
	)
}

func TestDSN(t *testing.T) {
	conf := DSNConf{
		User:     "quill",
		Password: "pw",
		Host:     "db",
		DB:       "blog",
	}
	dsn, err := DSN(DriverMySQL, conf)
	require.NoError(t, err)
	assert.Equal(t, "quill:pw@tcp(db:3306)/blog?charset=utf8mb4&parseTime=True", dsn)

	dsn, err = DSN(DriverPostgres, conf)
	require.NoError(t, err)
	assert.Equal(t, "host=db user=quill password=pw dbname=blog port=5432", dsn)

	_, err = DSN(DriverSQLite, conf)
	assert.Error(t, err)
	_, err = DSN("oracle", conf)
	assert.Error(t, err)
}
