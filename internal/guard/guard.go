// Package guard implements the access control decision for incoming queries.
//
// Check is a pure function over the actor's profile and the query text.
// Rules are evaluated in fixed priority order; the first match wins
// regardless of the actor's clearance:
//
//  1. Confidential vocabulary — clearance-independent, denies even SCL-5
//  2. Restricted facility vocabulary — gated by the facility-access flag
//  3. Clearance forbidden keywords — per the actor's policy table row
//
// All matching is case-insensitive substring containment: a keyword
// appearing inside a longer word still triggers. This is a heuristic
// filter, not an adversarial defense.
package guard

import (
	"strings"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
)

// Category identifies which rule denied a query.
type Category string

const (
	CategoryConfidential Category = "confidential"
	CategoryFacility     Category = "facility"
	CategoryClearance    Category = "clearance"
)

// Result is the outcome of a guard check. Zero value is not meaningful;
// use Check.
type Result struct {
	Allowed       bool
	Category      Category // set only when denied
	Keyword       string   // the triggering term
	RequiredLevel int      // clearance category only: lowest sufficient level
	ActualLevel   int
	RefID         string // 4-digit reference code, stable per triggering text
}

// Guard evaluates queries against the clearance table and the fixed
// never-disclose vocabularies.
type Guard struct {
	table *clearance.Table
	vocab Vocabulary
}

// New creates a Guard. A nil table falls back to the built-in defaults.
func New(table *clearance.Table, vocab Vocabulary) *Guard {
	if table == nil {
		table = clearance.DefaultTable()
	}
	return &Guard{table: table, vocab: vocab}
}

// NewDefault creates a Guard with the default table and vocabulary.
func NewDefault() *Guard {
	return New(clearance.DefaultTable(), DefaultVocabulary())
}

// Check decides whether the actor may ask this query. Pure: no side
// effects, no external calls. Persistence of the decision is the caller's
// concern.
func (g *Guard) Check(a actor.Actor, query string) Result {
	lower := strings.ToLower(query)
	level := clearance.Normalize(a.Clearance)

	// Rule 1: confidential vocabulary overrides even top clearance.
	for _, kw := range g.vocab.Confidential {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return Result{
				Category:    CategoryConfidential,
				Keyword:     kw,
				ActualLevel: level,
				RefID:       RefID(kw),
			}
		}
	}

	// Rule 2: restricted facility vocabulary, gated by the access flag.
	for _, kw := range g.vocab.Facility {
		if strings.Contains(lower, strings.ToLower(kw)) && !a.FacilityAccess {
			return Result{
				Category:    CategoryFacility,
				Keyword:     kw,
				ActualLevel: level,
				RefID:       RefID(kw),
			}
		}
	}

	// Rule 3: clearance tier forbidden keywords.
	policy := g.table.PolicyFor(level)
	for _, kw := range policy.ForbiddenKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return Result{
				Category:      CategoryClearance,
				Keyword:       kw,
				RequiredLevel: g.table.RequiredLevelFor(kw),
				ActualLevel:   level,
				RefID:         RefID(kw),
			}
		}
	}

	return Result{Allowed: true, ActualLevel: level}
}

// Table returns the clearance table the guard evaluates against.
func (g *Guard) Table() *clearance.Table {
	return g.table
}
