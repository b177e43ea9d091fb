package cli

import (
	"errors"
	"fmt"

	"github.com/leaflens/leaflens/internal/auth"
	"github.com/spf13/cobra"
)

var (
	flagEmail    string
	flagPassword string
)

// loginCmd represents the login command.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save your session",
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

		if err := a.auth.Login(cmd.Context(), email, password); err != nil {
			var verr *auth.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid input: %w", verr)
			}
			return err
		}

		user, _ := a.auth.User()
		fmt.Printf("Signed in as %s\n", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "account password (prompted when omitted)")
}

func credentials() (string, string, error) {
	email := flagEmail
	if email == "" {
		var err error
		if email, err = prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	password := flagPassword
	if password == "" {
		var err error
		if password, err = prompt("Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
