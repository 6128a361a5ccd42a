package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyPaths stackPaths
	historyClear bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyPaths.historyDB, "history-db", "", "Path to conversation store")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the session's messages instead of listing them")
}

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "List or clear a session's conversation history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	store, err := historyPaths.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if historyClear {
		if err := store.Clear(ctx, sessionID); err != nil {
			return err
		}
		fmt.Printf("Cleared session %s\n", sessionID)
		return nil
	}

	msgs, err := store.List(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Printf("No messages for session %s\n", sessionID)
		return nil
	}

	for _, m := range msgs {
		fmt.Printf("[%s] %s:\n%s\n\n", m.Timestamp.UTC().Format(time.RFC3339), m.Role, m.Content)
	}
	return nil
}
