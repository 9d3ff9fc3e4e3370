package main

import (
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quillblog/quill/cmd/quill/config"
	"github.com/quillblog/quill/internal/version"
	"github.com/quillblog/quill/storage/model"
)

var rootCmd = &cobra.Command{
	Use:               "quillctl",
	Short:             "quillctl can help you manage your quill blog",
	Long:              "quillctl can help you manage your quill blog: users, posts and storage migration",
	Version:           version.String(),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var configFile string
var backends model.Backends

func loadConfig(_ *cobra.Command, _ []string) error {
	config.Load(configFile)
	log.Debug("Loaded Config")

	var err error
	backends, err = config.LoadStorageBackends(config.Get().Storage)
	return err
}

func success(format string, args ...any) {
	_, _ = color.New(color.FgGreen).Printf(format+"\n", args...)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the config file to use")
	rootCmd.AddCommand(userCmd, postCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
