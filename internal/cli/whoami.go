package cli

import (
	"fmt"

	"github.com/leaflens/leaflens/internal/auth"
	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		// A bootstrap failure resolves to Anonymous; report the state
		// instead of failing the command.
		_ = a.auth.Bootstrap(cmd.Context())

		switch a.auth.State() {
		case auth.StateAuthenticated:
			user, _ := a.auth.User()
			fmt.Printf("Email:    %s\n", user.Email)
			fmt.Printf("Username: %s\n", user.Username)
			if user.IsAdmin {
				fmt.Println("Role:     admin")
			}
		default:
			if !a.auth.ServerAvailable() {
				fmt.Println("Not signed in (server unreachable, saved session kept)")
			} else {
				fmt.Println("Not signed in")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
