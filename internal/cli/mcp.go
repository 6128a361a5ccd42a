package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/redfield/usiop/internal/clearance"
	usiopmcp "github.com/redfield/usiop/internal/mcp"
	"github.com/redfield/usiop/internal/pipeline"
)

var mcpPaths stackPaths

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPaths.roster, "roster", "", "Path to roster YAML (required)")
	mcpCmd.Flags().StringVar(&mcpPaths.policy, "policy", "", "Path to clearance table YAML")
	mcpCmd.Flags().StringVar(&mcpPaths.vocab, "vocab", "", "Path to vocabulary YAML")
	mcpCmd.Flags().StringVar(&mcpPaths.historyDB, "history-db", "", "Path to conversation store")
	mcpCmd.Flags().StringVar(&mcpPaths.docsDB, "docs-db", "", "Path to document store")
	mcpCmd.Flags().StringVar(&mcpPaths.auditLog, "audit-log", "", "Path to decision log JSONL file")
	mcpCmd.Flags().StringVar(&mcpPaths.apiURL, "api-url", "https://api.openai.com/v1/chat/completions", "Chat completions endpoint")
	mcpCmd.Flags().StringVar(&mcpPaths.model, "model", "gpt-4o-mini", "Model name")
	mcpCmd.Flags().DurationVar(&mcpPaths.timeout, "timeout", 60*time.Second, "Generation timeout")
	mcpCmd.MarkFlagRequired("roster")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs the assistant as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes clearance-gated tools: ask, check, history, clear.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	roster, err := mcpPaths.openRoster()
	if err != nil {
		return err
	}

	table, err := clearance.LoadTable(mcpPaths.policy)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}

	sessions, err := mcpPaths.openHistory()
	if err != nil {
		return err
	}
	defer sessions.Close()

	retriever, closeDocs := mcpPaths.openRetriever(table)
	defer closeDocs()

	auditLog, err := mcpPaths.openAuditLog()
	if err != nil {
		return err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}
	var recorder pipeline.Recorder
	if auditLog != nil {
		recorder = auditLog
	}

	srv, err := usiopmcp.New(usiopmcp.Config{
		PolicyPath: mcpPaths.policy,
		VocabPath:  mcpPaths.vocab,
	}, roster, retriever, mcpPaths.newGenerator(), sessions, recorder)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "usiop MCP server running on stdio")
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
