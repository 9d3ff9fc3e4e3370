package main

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage blog posts",
}

var postAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")
		if bodyFile, _ := cmd.Flags().GetString("body-file"); bodyFile != "" {
			data, err := os.ReadFile(bodyFile)
			if err != nil {
				return errors.WithStack(err)
			}
			body = string(data)
		}
		p, err := backends.Posts.Create(args[0], body)
		if err != nil {
			return err
		}
		success("created post %d", p.ID)
		return nil
	},
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := backends.Posts.List()
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"ID", "Title", "Created", "Updated"})
		for _, p := range posts {
			table.Append(
				[]string{
					strconv.FormatUint(uint64(p.ID), 10),
					p.Title,
					p.CreatedAt.Format("2006-01-02 15:04"),
					p.UpdatedAt.Format("2006-01-02 15:04"),
				},
			)
		}
		table.Render()
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post with its comments and likes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 0)
		if err != nil {
			return errors.Errorf("invalid post id '%s'", args[0])
		}
		if err = backends.Posts.Delete(uint(id)); err != nil {
			return err
		}
		success("deleted post %d", id)
		return nil
	},
}

func init() {
	postAddCmd.Flags().String("body", "", "the post body")
	postAddCmd.Flags().String("body-file", "", "read the post body from this file")
	postCmd.AddCommand(postAddCmd, postListCmd, postDeleteCmd)
}
