package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quillblog/quill/cmd/quill/config"
	"github.com/quillblog/quill/storage"
	"github.com/quillblog/quill/storage/badgerstore"
	"github.com/quillblog/quill/storage/model"
)

type postsExporter interface {
	Export() ([]model.Post, error)
}

type postsImporter interface {
	Import(p model.Post) error
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
}

var migratePostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Copy all posts with their comments and likes into another posts backend",
	Long: `Copy all posts with their comments and likes from the configured posts
backend into the one given by --to. Post ids are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		badgerDir, _ := cmd.Flags().GetString("badger-dir")
		src, ok := backends.Posts.(postsExporter)
		if !ok {
			return errors.New("configured posts backend does not support export")
		}
		dst, closeDst, err := openPostsBackend(storage.PostsBackendType(to), badgerDir)
		if err != nil {
			return err
		}
		defer closeDst()
		n, err := migratePosts(src, dst)
		if err != nil {
			return err
		}
		success("migrated %d posts to %s", n, to)
		return nil
	},
}

func openPostsBackend(t storage.PostsBackendType, badgerDir string) (postsImporter, func(), error) {
	switch t {
	case storage.PostsBackendBadger:
		if badgerDir == "" {
			return nil, nil, errors.New("--badger-dir is required for the badger backend")
		}
		s, err := badgerstore.Open(badgerDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case storage.PostsBackendGorm:
		cfg := config.Get().Storage.StorageConfig()
		warehouse, err := storage.NewStorage(cfg)
		if err != nil {
			return nil, nil, err
		}
		return warehouse.PostsStorage(), func() { _ = warehouse.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown posts backend '%s'", t)
	}
}

func migratePosts(src postsExporter, dst postsImporter) (int, error) {
	posts, err := src.Export()
	if err != nil {
		return 0, err
	}
	for _, p := range posts {
		if err = dst.Import(p); err != nil {
			return 0, errors.WithMessagef(err, "could not import post %d", p.ID)
		}
		log.WithField("post", p.ID).Debug("migrated post")
	}
	return len(posts), nil
}

func init() {
	migratePostsCmd.Flags().String("to", string(storage.PostsBackendBadger), "destination backend: gorm or badger")
	migratePostsCmd.Flags().String("badger-dir", "", "badger directory of the destination")
	migrateCmd.AddCommand(migratePostsCmd)
}
