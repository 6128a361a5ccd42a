package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/guard"
)

func init() {
	rootCmd.AddCommand(initPolicyCmd)
}

var initPolicyCmd = &cobra.Command{
	Use:   "init-policy",
	Short: "Generate default clearance.yaml and vocabulary.yaml with comments",
	Long: "Creates ~/.usiop/clearance.yaml and ~/.usiop/vocabulary.yaml with the\n" +
		"built-in defaults. Edit these files to customize the clearance table\n" +
		"and the never-disclose vocabularies.",
	RunE: runInitPolicy,
}

func runInitPolicy(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".usiop")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"clearance.yaml", clearance.DefaultTableYAML()},
		{"vocabulary.yaml", guard.DefaultVocabularyYAML()},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists at %s", f.name, path)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		fmt.Printf("Created %s\n", path)
	}
	return nil
}
