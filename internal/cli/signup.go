package cli

import (
	"fmt"

	"github.com/leaflens/leaflens/internal/auth"
	"github.com/spf13/cobra"
)

var flagUsername string

// signupCmd represents the signup command.
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		email, password, err := credentials()
		if err != nil {
			return err
		}
		username := flagUsername
		if username == "" {
			if username, err = prompt("Username: "); err != nil {
				return err
			}
		}

		if err := auth.ValidateEmail(email); err != nil {
			return err
		}
		if err := auth.ValidatePassword(password); err != nil {
			return err
		}

		if err := a.gw.Signup(cmd.Context(), username, email, password); err != nil {
			return err
		}
		if err := a.auth.Login(cmd.Context(), email, password); err != nil {
			return err
		}

		fmt.Printf("Welcome, %s. You are signed in.\n", username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().StringVar(&flagUsername, "username", "", "display name for the new account")
	signupCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	signupCmd.Flags().StringVar(&flagPassword, "password", "", "account password (prompted when omitted)")
}
