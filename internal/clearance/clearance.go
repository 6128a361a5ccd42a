// Package clearance defines the security clearance level (SCL) policy table.
//
// Each level 1-5 carries a set of allowed topic tags, a set of forbidden
// keywords, a retrieval breadth, and the behavioral directive text injected
// into generation instructions. Forbidden keyword sets shrink monotonically
// as the level rises; level 5 has none and a topic wildcard.
package clearance

import (
	"fmt"
	"sort"
	"strings"
)

// Level bounds. Anything outside collapses to MinLevel.
const (
	MinLevel = 1
	MaxLevel = 5
)

// TopicWildcard marks full topic access (level 5).
const TopicWildcard = "*"

// Policy is one row of the clearance table.
type Policy struct {
	Level             int      `yaml:"level"`
	AllowedTopics     []string `yaml:"allowed_topics"`
	ForbiddenKeywords []string `yaml:"forbidden_keywords"`
	RetrievalK        int      `yaml:"retrieval_k"`
	Directive         string   `yaml:"directive"`
}

// Table is the ordered clearance policy table, one row per level.
type Table struct {
	rows []Policy
}

// NewTable builds a table from rows and validates its invariants.
func NewTable(rows []Policy) (*Table, error) {
	sorted := make([]Policy, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	t := &Table{rows: sorted}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Normalize collapses unrecognized levels to the most restrictive tier.
func Normalize(level int) int {
	if level < MinLevel || level > MaxLevel {
		return MinLevel
	}
	return level
}

// PolicyFor returns the row for the given level, falling back to level 1
// for unrecognized levels.
func (t *Table) PolicyFor(level int) Policy {
	level = Normalize(level)
	for _, row := range t.rows {
		if row.Level == level {
			return row
		}
	}
	return t.rows[0]
}

// RetrievalK returns the retrieval breadth for the given level.
func (t *Table) RetrievalK(level int) int {
	return t.PolicyFor(level).RetrievalK
}

// RequiredLevelFor returns the lowest level whose forbidden set excludes the
// keyword. A keyword forbidden at every level reports MaxLevel.
func (t *Table) RequiredLevelFor(keyword string) int {
	for _, row := range t.rows {
		if !containsKeyword(row.ForbiddenKeywords, keyword) {
			return row.Level
		}
	}
	return MaxLevel
}

// Validate checks the table invariants: exactly one row per level 1-5,
// forbidden sets monotonically shrinking (each level's set is a subset of
// the previous level's), and retrieval breadth monotonically non-decreasing.
func (t *Table) Validate() error {
	if len(t.rows) != MaxLevel {
		return fmt.Errorf("clearance table must have %d rows, got %d", MaxLevel, len(t.rows))
	}
	for i, row := range t.rows {
		if row.Level != i+1 {
			return fmt.Errorf("clearance table row %d has level %d, want %d", i, row.Level, i+1)
		}
		if row.RetrievalK <= 0 {
			return fmt.Errorf("level %d: retrieval_k must be positive, got %d", row.Level, row.RetrievalK)
		}
	}
	for i := 1; i < len(t.rows); i++ {
		prev, cur := t.rows[i-1], t.rows[i]
		if cur.RetrievalK < prev.RetrievalK {
			return fmt.Errorf("retrieval_k must not decrease: level %d has %d, level %d has %d",
				prev.Level, prev.RetrievalK, cur.Level, cur.RetrievalK)
		}
		for _, kw := range cur.ForbiddenKeywords {
			if !containsKeyword(prev.ForbiddenKeywords, kw) {
				return fmt.Errorf("level %d forbids %q which level %d does not; forbidden sets must shrink monotonically",
					cur.Level, kw, prev.Level)
			}
		}
	}
	top := t.rows[len(t.rows)-1]
	if len(top.ForbiddenKeywords) != 0 {
		return fmt.Errorf("level %d must have an empty forbidden set", MaxLevel)
	}
	return nil
}

// Rows returns a copy of the ordered policy rows.
func (t *Table) Rows() []Policy {
	out := make([]Policy, len(t.rows))
	copy(out, t.rows)
	return out
}

func containsKeyword(set []string, keyword string) bool {
	for _, k := range set {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}
