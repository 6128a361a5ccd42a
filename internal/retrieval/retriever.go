// Package retrieval adapts an external document store to the response
// pipeline. Retrieval breadth is the only clearance-driven lever here: the
// store itself never learns the actor's clearance. Topic suppression is
// handled upstream (guard) and downstream (generation directives).
package retrieval

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
)

// MinScore is the fixed relevance threshold for retrieved passages.
const MinScore = 0.5

// Sentinel context strings. The generator's instructions describe both
// states, so downstream answers degrade gracefully instead of erroring.
const (
	NoResults   = "No relevant policy information found within your clearance level."
	Unavailable = "Policy database temporarily unavailable. Please try again later."
)

// passageSeparator joins retrieved passages in the composed context.
const passageSeparator = "\n\n---\n\n"

// Passage is one scored document snippet from the store.
type Passage struct {
	Text   string
	Source string
	Score  float64
}

// Searcher is the contract the external document store must satisfy.
// Results are expected in descending relevance order.
type Searcher interface {
	Search(ctx context.Context, query string, k int, minScore float64) ([]Passage, error)
}

// Adapter scopes retrieval breadth by clearance and shields the pipeline
// from store failures.
type Adapter struct {
	store Searcher
	table *clearance.Table
}

// NewAdapter creates an Adapter. A nil table falls back to the defaults.
func NewAdapter(store Searcher, table *clearance.Table) *Adapter {
	if table == nil {
		table = clearance.DefaultTable()
	}
	return &Adapter{store: store, table: table}
}

// Retrieve fetches up to k passages for the actor's clearance and joins
// them with their source labels, preserving the store's ordering. Failure
// never propagates: a missing store or a store error yields the
// Unavailable sentinel, zero qualifying passages yield NoResults.
func (a *Adapter) Retrieve(ctx context.Context, act actor.Actor, query string) string {
	if a.store == nil {
		fmt.Fprintf(os.Stderr, "retrieval: no document store configured\n")
		return Unavailable
	}

	k := a.table.RetrievalK(act.Clearance)
	passages, err := a.store.Search(ctx, query, k, MinScore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retrieval: search failed: %v\n", err)
		return Unavailable
	}
	if len(passages) == 0 {
		return NoResults
	}

	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		source := p.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", source, p.Text))
	}
	return strings.Join(parts, passageSeparator)
}
