// Package cli implements the usiop command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "usiop",
	Short: "Security-clearance-gated onboarding assistant",
	Long: "U-SIOP answers employee onboarding questions through a clearance gate:\n" +
		"queries are checked against per-level forbidden keywords and fixed\n" +
		"never-disclose vocabularies before any retrieval or generation happens.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
