package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// adminCmd represents the admin command.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations (admin accounts only)",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sess, err := a.requireSession()
		if err != nil {
			return err
		}
		users, err := a.gw.AdminListUsers(cmd.Context(), sess)
		if err != nil {
			return err
		}
		for _, u := range users {
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			fmt.Printf("%-32s %-24s %s\n", u.Email, u.Username, role)
		}
		return nil
	},
}

var flagAdmin bool

var adminUpdateUserCmd = &cobra.Command{
	Use:   "update-user <email>",
	Short: "Grant or revoke a user's admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sess, err := a.requireSession()
		if err != nil {
			return err
		}
		if err := a.gw.AdminUpdateUser(cmd.Context(), sess, args[0], flagAdmin); err != nil {
			return err
		}
		fmt.Println("User updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminUpdateUserCmd)
	adminUpdateUserCmd.Flags().BoolVar(&flagAdmin, "admin", false, "grant the admin role (omit to revoke)")
}
