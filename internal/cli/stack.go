package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/audit"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/docstore"
	"github.com/redfield/usiop/internal/generate"
	"github.com/redfield/usiop/internal/history"
	"github.com/redfield/usiop/internal/retrieval"
)

// stackPaths holds the file paths shared by the chat, serve, and mcp
// commands. Empty paths fall back to ~/.usiop defaults inside the loaders.
type stackPaths struct {
	policy    string
	vocab     string
	roster    string
	historyDB string
	docsDB    string
	auditLog  string
	apiURL    string
	model     string
	timeout   time.Duration
}

// dataPath resolves a file under ~/.usiop, falling back to the working
// directory when the home directory is unknown.
func dataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".usiop", name)
}

func (p *stackPaths) historyPath() string {
	if p.historyDB != "" {
		return p.historyDB
	}
	return dataPath("history.db")
}

func (p *stackPaths) docsPath() string {
	if p.docsDB != "" {
		return p.docsDB
	}
	return dataPath("docs.db")
}

// openRoster loads the actor roster; the path is required because there is
// no sensible built-in employee list.
func (p *stackPaths) openRoster() (*actor.Roster, error) {
	if p.roster == "" {
		return nil, fmt.Errorf("--roster is required")
	}
	roster, err := actor.LoadRoster(p.roster)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return roster, nil
}

// openRetriever opens the bundled document store and wraps it in the
// clearance-scoped adapter. A store that cannot be opened degrades to the
// unavailable sentinel rather than failing the command.
func (p *stackPaths) openRetriever(table *clearance.Table) (*retrieval.Adapter, func()) {
	store, err := docstore.Open(p.docsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: document store unavailable: %v\n", err)
		return retrieval.NewAdapter(nil, table), func() {}
	}
	return retrieval.NewAdapter(store, table), func() { store.Close() }
}

// openHistory opens the conversation store.
func (p *stackPaths) openHistory() (*history.Store, error) {
	store, err := history.Open(p.historyPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}
	return store, nil
}

// openAuditLog opens the optional decision log. Empty path means disabled.
func (p *stackPaths) openAuditLog() (*audit.Log, error) {
	if p.auditLog == "" {
		return nil, nil
	}
	log, err := audit.Open(p.auditLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return log, nil
}

// newGenerator builds the completions client. The API key comes from the
// environment so it never appears in process listings.
func (p *stackPaths) newGenerator() *generate.Client {
	return generate.New(generate.Config{
		APIURL:  p.apiURL,
		APIKey:  os.Getenv("USIOP_API_KEY"),
		Model:   p.model,
		Timeout: p.timeout,
	})
}
