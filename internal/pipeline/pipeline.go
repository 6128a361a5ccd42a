// Package pipeline runs a single conversation turn through the full gate
// sequence: guard check, retrieval, prompt composition, generation, and
// envelope formatting. The guard verdict is computed before any retrieval
// or generation work, so denied queries never touch the document store or
// the completions endpoint.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/audit"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/compose"
	"github.com/redfield/usiop/internal/envelope"
	"github.com/redfield/usiop/internal/guard"
	"github.com/redfield/usiop/internal/history"
)

// Retriever returns clearance-scoped context text for a query. It never
// fails; outages surface as sentinel text inside the returned string.
type Retriever interface {
	Retrieve(ctx context.Context, a actor.Actor, query string) string
}

// Generator produces a model response from composed instructions, prior
// session messages, and the new query.
type Generator interface {
	Generate(ctx context.Context, systemInstructions string, prior []history.Message, query string, meta map[string]string) (string, error)
}

// History persists and replays per-session messages.
type History interface {
	Append(ctx context.Context, sessionID, role, content string) error
	List(ctx context.Context, sessionID string) ([]history.Message, error)
}

// Recorder receives one audit entry per guard decision.
type Recorder interface {
	Record(e audit.Entry) error
}

// Pipeline wires the turn sequence together. Recorder is optional; the
// others are required.
type Pipeline struct {
	guard     *guard.Guard
	composer  *compose.Composer
	retriever Retriever
	generator Generator
	history   History
	recorder  Recorder
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithRecorder attaches a decision log.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New builds a pipeline. A nil guard falls back to the built-in policy
// table and vocabulary.
func New(g *guard.Guard, ret Retriever, gen Generator, hist History, opts ...Option) *Pipeline {
	if g == nil {
		g = guard.NewDefault()
	}
	p := &Pipeline{
		guard:     g,
		composer:  compose.New(g.Table()),
		retriever: ret,
		generator: gen,
		history:   hist,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleTurn processes one query for one asset and returns the enveloped
// response text. It never returns an error to the caller: denied queries
// get a denial envelope, collaborator failures get the degraded envelope,
// and history failures are logged and skipped.
func (p *Pipeline) HandleTurn(ctx context.Context, a actor.Actor, sessionID, query string) string {
	a.Normalize()

	res := p.guard.Check(a, query)
	p.record(a, sessionID, res)

	if !res.Allowed {
		denial := envelope.FormatDenial(res)
		p.persist(ctx, sessionID, query, denial)
		return denial
	}

	prior, err := p.history.List(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: list history: %v\n", err)
		prior = nil
	}

	retrieved := p.retriever.Retrieve(ctx, a, query)
	system := p.composer.Compose(a, retrieved)

	meta := map[string]string{
		"employee_id": a.ID,
		"scl_level":   strconv.Itoa(clearance.Normalize(a.Clearance)),
		"location":    a.Location,
		"session_id":  sessionID,
	}

	text, err := p.generator.Generate(ctx, system, prior, query, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: generate: %v\n", err)
		out := envelope.Degraded()
		p.persist(ctx, sessionID, query, out)
		return out
	}

	out := envelope.Wrap(a, text)
	p.persist(ctx, sessionID, query, out)
	return out
}

// persist appends the query and the final response to the session history.
// Failures are logged; a lost history entry must not fail the turn.
func (p *Pipeline) persist(ctx context.Context, sessionID, query, response string) {
	if err := p.history.Append(ctx, sessionID, history.RoleHuman, query); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: persist query: %v\n", err)
	}
	if err := p.history.Append(ctx, sessionID, history.RoleAI, response); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: persist response: %v\n", err)
	}
}

func (p *Pipeline) record(a actor.Actor, sessionID string, res guard.Result) {
	if p.recorder == nil {
		return
	}
	e := audit.Entry{
		SessionID: sessionID,
		ActorID:   a.ID,
		Clearance: clearance.Normalize(a.Clearance),
		Decision:  audit.DecisionAllowed,
	}
	if !res.Allowed {
		e.Decision = audit.DecisionDenied
		e.Category = string(res.Category)
		e.Keyword = res.Keyword
		e.RequiredLevel = res.RequiredLevel
		e.RefID = res.RefID
	}
	if err := p.recorder.Record(e); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: audit: %v\n", err)
	}
}
