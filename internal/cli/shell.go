package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/workflow"
	"github.com/spf13/cobra"
)

// shellCmd represents the shell command.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session: identify, translate, speak, export",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		_ = a.auth.Bootstrap(cmd.Context())
		if user, ok := a.auth.User(); ok {
			fmt.Printf("Signed in as %s\n", user.Email)
		} else {
			fmt.Println("Not signed in, results will not be saved to history")
		}

		repl(cmd.Context(), a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// repl runs the interactive loop, accepting commands against the current
// identification.
func repl(ctx context.Context, a *app) {
	lang := a.opts.Language
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("leaflens> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, identify <image>, lang <code>, languages, speak [path], export <txt|json|html> [path], show, history, delete <id>, clear, login, logout, exit")
		case "identify":
			if len(args) < 2 {
				fmt.Println("Usage: identify <image>")
				continue
			}
			image, err := os.ReadFile(args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := a.flow.SubmitImage(ctx, image, filepath.Base(args[1]), lang); err != nil {
				fmt.Println(err)
				continue
			}
			printSnapshot(a.flow.Snapshot())
		case "lang":
			if len(args) < 2 {
				fmt.Printf("Current language: %s. Usage: lang <code>\n", lang)
				continue
			}
			code := args[1]
			if !gateway.SupportedLanguage(code) {
				fmt.Printf("Unknown language %q. Try 'languages'.\n", code)
				continue
			}
			lang = code
			if a.flow.Snapshot().State == workflow.StateIdentified {
				if err := a.flow.Translate(ctx, code); err != nil {
					fmt.Println(err)
					continue
				}
				printSnapshot(a.flow.Snapshot())
			}
		case "languages":
			for _, code := range gateway.LanguageCodes() {
				fmt.Printf("%-6s %s\n", code, gateway.LanguageLabel(code))
			}
		case "speak":
			if err := a.flow.Speak(ctx, lang); err != nil {
				fmt.Println(err)
				continue
			}
			out := "speech.mp3"
			if len(args) > 1 {
				out = args[1]
			}
			snap := a.flow.Snapshot()
			if err := os.WriteFile(out, snap.Audio, 0o644); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Audio written to %s\n", out)
		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: export <txt|json|html> [path]")
				continue
			}
			out := ""
			if len(args) > 2 {
				out = args[2]
			}
			if err := exportCurrent(a.flow, args[1], out, lang); err != nil {
				fmt.Println(err)
			}
		case "show":
			snap := a.flow.Snapshot()
			if snap.PlantName == "" {
				fmt.Println("Nothing identified yet")
				continue
			}
			printSnapshot(snap)
		case "history":
			sess, err := a.requireSession()
			if err != nil {
				fmt.Println(err)
				continue
			}
			entries, err := a.hist.List(ctx, sess)
			if err != nil {
				fmt.Println(err)
				continue
			}
			for _, e := range entries {
				fmt.Printf("%s  %-24s %6.2f%%  %s\n", e.Timestamp, e.PlantName, e.Confidence*100, e.ID)
			}
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			sess, err := a.requireSession()
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := a.hist.Delete(ctx, sess, args[1]); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Entry deleted")
		case "clear":
			if err := a.flow.Clear(); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Cleared")
		case "login":
			email, password, err := credentials()
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := a.auth.Login(ctx, email, password); err != nil {
				fmt.Println(err)
				continue
			}
			user, _ := a.auth.User()
			fmt.Printf("Signed in as %s\n", user.Email)
		case "logout":
			a.auth.Logout()
			fmt.Println("Signed out")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}
