package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/report"
	"github.com/leaflens/leaflens/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	flagExport string
	flagOut    string
	flagSpeak  string
)

// identifyCmd represents the identify command.
var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify the plant in a photo",
	Long: `Uploads a photo for identification and prints the plant's name,
confidence, and description. With --lang the description is returned in
that language. When signed in, the result is saved to your history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		lang := a.opts.Language
		if !gateway.SupportedLanguage(lang) {
			return fmt.Errorf("unsupported language %q, choose one of: %s", lang, strings.Join(gateway.LanguageCodes(), ", "))
		}

		image, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		if err := a.flow.SubmitImage(cmd.Context(), image, filepath.Base(args[0]), lang); err != nil {
			return err
		}
		printSnapshot(a.flow.Snapshot())

		if flagSpeak != "" {
			if err := a.flow.Speak(cmd.Context(), lang); err != nil {
				return fmt.Errorf("speech synthesis failed: %w", err)
			}
			snap := a.flow.Snapshot()
			if err := os.WriteFile(flagSpeak, snap.Audio, 0o644); err != nil {
				return err
			}
			fmt.Printf("Audio written to %s\n", flagSpeak)
		}

		if flagExport != "" {
			if err := exportCurrent(a.flow, flagExport, flagOut, lang); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().StringVar(&flagExport, "export", "", "also export a report: txt, json, or html")
	identifyCmd.Flags().StringVar(&flagOut, "out", "", "report output path (default derived from the plant name)")
	identifyCmd.Flags().StringVar(&flagSpeak, "speak", "", "also synthesize speech, writing the audio to this path")
}

func printSnapshot(snap workflow.Snapshot) {
	fmt.Printf("Plant:      %s\n", snap.PlantName)
	fmt.Printf("Confidence: %.2f%%\n", snap.Confidence*100)
	fmt.Printf("Language:   %s\n", gateway.LanguageLabel(snap.Language))
	fmt.Println()
	for _, key := range snap.Info.Keys() {
		value, _ := snap.Info.Get(key)
		fmt.Printf("%s: %s\n", humanizeKey(key), value.Flatten())
	}
}

func humanizeKey(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func exportCurrent(flow *workflow.Workflow, format, out, lang string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	doc, name, err := flow.ExportReport(f, gateway.LanguageLabel(lang))
	if err != nil {
		return err
	}
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", out)
	return nil
}
