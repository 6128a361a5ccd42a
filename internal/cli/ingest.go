package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redfield/usiop/internal/docstore"
)

var ingestPaths stackPaths

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestPaths.docsDB, "docs-db", "", "Path to document store")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file...>",
	Short: "Index policy documents into the document store",
	Long: "Splits each file into paragraph passages (blank-line delimited) and\n" +
		"indexes them under the file's base name for full-text retrieval.",
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, err := docstore.Open(ingestPaths.docsPath())
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	total := 0
	for _, path := range args {
		n, err := store.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d passages\n", path, n)
		total += n
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d passages (%d total in store)\n", total, count)
	return nil
}
