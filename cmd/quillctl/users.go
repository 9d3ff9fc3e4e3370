package main

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage blog users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		admin, _ := cmd.Flags().GetBool("admin")
		if password == "" {
			return errors.New("--password is required")
		}
		u, err := backends.Users.Create(args[0], password, admin)
		if err != nil {
			return err
		}
		success("created user %s (id %d)", u.Username, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := backends.Users.List()
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"ID", "Username", "Admin", "Created"})
		for _, u := range users {
			table.Append(
				[]string{
					strconv.FormatUint(uint64(u.ID), 10),
					u.Username,
					strconv.FormatBool(u.Admin),
					u.CreatedAt.Format("2006-01-02 15:04"),
				},
			)
		}
		table.Render()
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := backends.Users.Delete(args[0]); err != nil {
			return err
		}
		success("deleted user %s", args[0])
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringP("password", "p", "", "the user's password")
	userAddCmd.Flags().Bool("admin", false, "grant the user access to post administration")
	userCmd.AddCommand(userAddCmd, userListCmd, userDeleteCmd)
}
