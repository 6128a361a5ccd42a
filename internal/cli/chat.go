package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/compose"
	"github.com/redfield/usiop/internal/guard"
	"github.com/redfield/usiop/internal/pipeline"
)

var (
	chatPaths    stackPaths
	chatEmployee string
	chatSession  string
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatEmployee, "employee", "", "Roster employee id to chat as (required)")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id (default: new session)")
	chatCmd.Flags().StringVar(&chatPaths.roster, "roster", "", "Path to roster YAML (required)")
	chatCmd.Flags().StringVar(&chatPaths.policy, "policy", "", "Path to clearance table YAML")
	chatCmd.Flags().StringVar(&chatPaths.vocab, "vocab", "", "Path to vocabulary YAML")
	chatCmd.Flags().StringVar(&chatPaths.historyDB, "history-db", "", "Path to conversation store")
	chatCmd.Flags().StringVar(&chatPaths.docsDB, "docs-db", "", "Path to document store")
	chatCmd.Flags().StringVar(&chatPaths.auditLog, "audit-log", "", "Path to decision log JSONL file")
	chatCmd.Flags().StringVar(&chatPaths.apiURL, "api-url", "https://api.openai.com/v1/chat/completions", "Chat completions endpoint")
	chatCmd.Flags().StringVar(&chatPaths.model, "model", "gpt-4o-mini", "Model name")
	chatCmd.Flags().DurationVar(&chatPaths.timeout, "timeout", 60*time.Second, "Generation timeout")
	chatCmd.MarkFlagRequired("employee")
	chatCmd.MarkFlagRequired("roster")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal session with the assistant",
	Long: "Starts a terminal conversation as a roster employee. Every query runs\n" +
		"through the clearance gate; denied queries print the denial transmission.\n" +
		"Type \"exit\" or press Ctrl-D to leave.",
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	roster, err := chatPaths.openRoster()
	if err != nil {
		return err
	}
	a, ok := roster.Lookup(chatEmployee)
	if !ok {
		return fmt.Errorf("unknown employee id %q", chatEmployee)
	}

	table, _, err := clearance.LoadTableWithHash(chatPaths.policy)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}
	vocab, err := guard.LoadVocabulary(chatPaths.vocab)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	sessions, err := chatPaths.openHistory()
	if err != nil {
		return err
	}
	defer sessions.Close()

	retriever, closeDocs := chatPaths.openRetriever(table)
	defer closeDocs()

	auditLog, err := chatPaths.openAuditLog()
	if err != nil {
		return err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}

	var opts []pipeline.Option
	if auditLog != nil {
		opts = append(opts, pipeline.WithRecorder(auditLog))
	}
	pipe := pipeline.New(guard.New(table, vocab), retriever, chatPaths.newGenerator(), sessions, opts...)

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
		fmt.Println(compose.Welcome(a))
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "session: %s\n\n", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		fmt.Println(pipe.HandleTurn(ctx, a, sessionID, query))
		fmt.Println()

		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}
