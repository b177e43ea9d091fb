package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/leaflens/leaflens/internal/models"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run 'leaflens login' first")

// requireSession returns the saved session or errNotSignedIn.
func (a *app) requireSession() (models.Session, error) {
	sess, ok := a.sessions.Get()
	if !ok {
		return models.Session{}, errNotSignedIn
	}
	return sess, nil
}

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage your identification history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd.Context())
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd.Context())
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history entry",
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
		if err := a.hist.Delete(cmd.Context(), sess, args[0]); err != nil {
			return err
		}
		fmt.Println("Entry deleted")
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
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
		answer, err := prompt("Delete your entire history? Type 'yes' to confirm: ")
		if err != nil {
			return err
		}
		if answer != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
		if err := a.hist.Clear(cmd.Context(), sess); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func listHistory(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	entries, err := a.hist.List(ctx, sess)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No history yet")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-24s %6.2f%%  %s\n", e.Timestamp, e.PlantName, e.Confidence*100, e.ID)
	}
	return nil
}
