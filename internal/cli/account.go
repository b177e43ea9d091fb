package cli

import (
	"fmt"
	"strings"

	"github.com/leaflens/leaflens/internal/auth"
	"github.com/spf13/cobra"
)

// accountCmd represents the account command.
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your account",
}

var resetRequestCmd = &cobra.Command{
	Use:   "reset-request <email>",
	Short: "Request a password reset token by email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.gw.RequestReset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("If the account exists, a reset token has been emailed")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Set a new password with a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		valid, err := a.gw.ValidateToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("reset token is invalid or expired")
		}

		password, err := prompt("New password: ")
		if err != nil {
			return err
		}
		confirm, err := prompt("Confirm password: ")
		if err != nil {
			return err
		}
		if err := auth.ValidatePasswordPair(password, confirm); err != nil {
			return err
		}

		if err := a.gw.ResetPassword(cmd.Context(), args[0], password); err != nil {
			return err
		}
		fmt.Println("Password updated, you can sign in now")
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed-in account",
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

		current, err := prompt("Current password: ")
		if err != nil {
			return err
		}
		next, err := prompt("New password: ")
		if err != nil {
			return err
		}
		confirm, err := prompt("Confirm password: ")
		if err != nil {
			return err
		}
		if err := auth.ValidatePasswordPair(next, confirm); err != nil {
			return err
		}

		if err := a.gw.ChangePassword(cmd.Context(), sess.Email, current, next); err != nil {
			return err
		}

		// The session carries the credential used for authenticated calls,
		// so it must follow the password.
		sess.CredentialSecret = next
		if err := a.sessions.Set(sess); err != nil {
			return err
		}
		fmt.Println("Password changed")
		return nil
	},
}

var updateProfileCmd = &cobra.Command{
	Use:   "update-profile <username>",
	Short: "Change the display name of the signed-in account",
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
		if err := a.gw.UpdateProfile(cmd.Context(), sess, args[0]); err != nil {
			return err
		}
		sess.Username = args[0]
		if err := a.sessions.Set(sess); err != nil {
			return err
		}
		fmt.Println("Profile updated")
		return nil
	},
}

var updateSettingsCmd = &cobra.Command{
	Use:   "update-settings <key=value> ...",
	Short: "Store preference settings on the backend",
	Args:  cobra.MinimumNArgs(1),
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

		settings := make(map[string]any, len(args))
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid setting %q, want key=value", arg)
			}
			settings[key] = value
		}

		if err := a.gw.UpdateSettings(cmd.Context(), sess, settings); err != nil {
			return err
		}
		fmt.Println("Settings updated")
		return nil
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete the signed-in account",
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

		// The backend requires the literal word DELETE as confirmation.
		confirmation, err := prompt("This cannot be undone. Type DELETE to confirm: ")
		if err != nil {
			return err
		}
		if err := a.gw.DeleteAccount(cmd.Context(), sess, confirmation); err != nil {
			return err
		}
		a.auth.Logout()
		fmt.Println("Account deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(resetRequestCmd)
	accountCmd.AddCommand(resetCmd)
	accountCmd.AddCommand(changePasswordCmd)
	accountCmd.AddCommand(updateProfileCmd)
	accountCmd.AddCommand(updateSettingsCmd)
	accountCmd.AddCommand(deleteAccountCmd)
}
