package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/spf13/cobra"
)

var (
	flagFeedbackType string
	flagRating       int
	flagScreenshot   string
	flagFromName     string
)

// feedbackCmd represents the feedback command.
var feedbackCmd = &cobra.Command{
	Use:   "feedback <text>",
	Short: "Send feedback to the Leaf-Lens team",
	Long: `Submits a feedback report: a suggestion, bug report, or general comment,
with an optional 1-5 rating and screenshot. When signed in, your name and
email are attached automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		fb := gateway.Feedback{
			Name:   flagFromName,
			Type:   flagFeedbackType,
			Text:   strings.Join(args, " "),
			Rating: flagRating,
		}
		if sess, ok := a.sessions.Get(); ok {
			fb.Email = sess.Email
			if fb.Name == "" {
				fb.Name = sess.Username
			}
		}
		if flagScreenshot != "" {
			shot, err := os.ReadFile(flagScreenshot)
			if err != nil {
				return err
			}
			fb.Screenshot = shot
			fb.ScreenshotName = filepath.Base(flagScreenshot)
		}

		id, err := a.gw.SubmitFeedback(cmd.Context(), fb)
		if err != nil {
			return err
		}
		fmt.Printf("Thank you for your feedback! (reference %s)\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.Flags().StringVar(&flagFeedbackType, "type", "suggestion", "feedback type: suggestion, bug, or general")
	feedbackCmd.Flags().IntVar(&flagRating, "rating", 0, "rating from 1 to 5 (0 to skip)")
	feedbackCmd.Flags().StringVar(&flagScreenshot, "screenshot", "", "attach a screenshot image")
	feedbackCmd.Flags().StringVar(&flagFromName, "name", "", "name to sign the feedback with")
}
