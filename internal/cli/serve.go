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
	"github.com/redfield/usiop/internal/pipeline"
	"github.com/redfield/usiop/internal/server"
)

var (
	servePaths stackPaths
	serveAddr  string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&servePaths.roster, "roster", "", "Path to roster YAML (required)")
	serveCmd.Flags().StringVar(&servePaths.policy, "policy", "", "Path to clearance table YAML")
	serveCmd.Flags().StringVar(&servePaths.vocab, "vocab", "", "Path to vocabulary YAML")
	serveCmd.Flags().StringVar(&servePaths.historyDB, "history-db", "", "Path to conversation store")
	serveCmd.Flags().StringVar(&servePaths.docsDB, "docs-db", "", "Path to document store")
	serveCmd.Flags().StringVar(&servePaths.auditLog, "audit-log", "", "Path to decision log JSONL file")
	serveCmd.Flags().StringVar(&servePaths.apiURL, "api-url", "https://api.openai.com/v1/chat/completions", "Chat completions endpoint")
	serveCmd.Flags().StringVar(&servePaths.model, "model", "gpt-4o-mini", "Model name")
	serveCmd.Flags().DurationVar(&servePaths.timeout, "timeout", 60*time.Second, "Generation timeout")
	serveCmd.MarkFlagRequired("roster")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: "Runs the assistant as an HTTP server with a chat endpoint, session\n" +
		"history endpoints, a health probe, and Prometheus metrics.\n" +
		"Supports hot-reload of the policy table and vocabulary files.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	roster, err := servePaths.openRoster()
	if err != nil {
		return err
	}

	// The table here only scopes the retriever's breadth lookup default;
	// the server reloads its own copy for the guard.
	table, err := clearance.LoadTable(servePaths.policy)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}

	sessions, err := servePaths.openHistory()
	if err != nil {
		return err
	}
	defer sessions.Close()

	retriever, closeDocs := servePaths.openRetriever(table)
	defer closeDocs()

	auditLog, err := servePaths.openAuditLog()
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

	srv, err := server.New(server.Config{
		Addr:       serveAddr,
		PolicyPath: servePaths.policy,
		VocabPath:  servePaths.vocab,
	}, roster, retriever, servePaths.newGenerator(), sessions, recorder)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start hot-reload watcher for the policy and vocabulary files
	reloader, err := server.NewReloader(srv, []string{servePaths.policy, servePaths.vocab})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down chat server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "usiop chat server listening on %s\n", serveAddr)
	if servePaths.policy != "" {
		fmt.Fprintf(os.Stderr, "Policy: %s (hot-reload enabled)\n", servePaths.policy)
	}
	fmt.Fprintln(os.Stderr)

	return srv.Serve()
}
