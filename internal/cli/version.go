package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build version and date",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leaflens\nVersion: %s\nBuild Date: %s\n", Version, BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
