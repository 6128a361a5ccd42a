package clearance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk YAML shape of the clearance table.
type tableFile struct {
	Levels []Policy `yaml:"levels"`
}

// DefaultTable returns the built-in clearance table.
func DefaultTable() *Table {
	t, err := NewTable(defaultRows())
	if err != nil {
		// The built-in rows satisfy the invariants; reaching this is a bug.
		panic(fmt.Sprintf("clearance: default table invalid: %v", err))
	}
	return t
}

// LoadTable loads the clearance table from a YAML file.
// Empty path falls back to ~/.usiop/clearance.yaml.
// Missing file returns the defaults. Invalid YAML or a table violating the
// monotonicity invariants returns an error.
func LoadTable(path string) (*Table, error) {
	cfg, _, err := LoadTableWithHash(path)
	return cfg, err
}

// LoadTableWithHash loads the clearance table and returns the SHA-256 hash of
// the raw YAML bytes. When no file exists (defaults used), the hash is the
// SHA-256 of empty input.
func LoadTableWithHash(path string) (*Table, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultTable(), emptyHash(), nil
		}
		path = filepath.Join(home, ".usiop", "clearance.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTable(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("failed to read clearance table: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("failed to parse clearance table: %w", err)
	}
	if len(f.Levels) == 0 {
		return DefaultTable(), hash, nil
	}

	t, err := NewTable(f.Levels)
	if err != nil {
		return nil, "", fmt.Errorf("invalid clearance table: %w", err)
	}
	return t, hash, nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}

func defaultRows() []Policy {
	return []Policy{
		{
			Level:             1,
			AllowedTopics:     []string{"general_policies", "hr_benefits", "office_locations"},
			ForbiddenKeywords: []string{"outbreak", "specimen", "t-virus", "g-virus", "nemesis", "tyrant", "secret", "classified"},
			RetrievalK:        2,
			Directive: `ADDITIONAL SECURITY DIRECTIVE (SCL-1 ASSET):
This asset has ENTRY-LEVEL clearance. Strict information control applies:
- DO NOT reveal any research project details
- DO NOT acknowledge underground facilities or containment protocols
- Redirect sensitive inquiries to: "Please consult your supervisor for further guidance"
- Only provide basic HR, benefits, and general policy information`,
		},
		{
			Level:             2,
			AllowedTopics:     []string{"general_policies", "hr_benefits", "office_locations", "safety_protocols", "emergency_procedures"},
			ForbiddenKeywords: []string{"outbreak", "specimen", "t-virus", "g-virus", "nemesis", "tyrant"},
			RetrievalK:        3,
			Directive: `ADDITIONAL SECURITY DIRECTIVE (SCL-2 ASSET):
This asset has STANDARD clearance:
- May access departmental procedures and emergency protocols
- DO NOT reveal cross-departmental classified projects
- Acknowledge general safety procedures but not specific containment details`,
		},
		{
			Level:             3,
			AllowedTopics:     []string{"general_policies", "hr_benefits", "office_locations", "safety_protocols", "emergency_procedures", "research_guidelines"},
			ForbiddenKeywords: []string{"t-virus", "g-virus", "nemesis", "tyrant"},
			RetrievalK:        4,
			Directive: `ADDITIONAL SECURITY DIRECTIVE (SCL-3 ASSET):
This asset has ELEVATED clearance:
- May access research guidelines and departmental project overviews
- May acknowledge existence of special protocols without details
- Still restricted from containment-level information`,
		},
		{
			Level:             4,
			AllowedTopics:     []string{"general_policies", "hr_benefits", "office_locations", "safety_protocols", "emergency_procedures", "research_guidelines", "containment_protocols"},
			ForbiddenKeywords: []string{"nemesis", "tyrant"},
			RetrievalK:        5,
			Directive: `ADDITIONAL SECURITY DIRECTIVE (SCL-4 ASSET):
This asset has HIGH clearance:
- May access containment protocols and facility security details
- May acknowledge underground operations at HQ
- Still restricted from Board-level strategic information`,
		},
		{
			Level:             5,
			AllowedTopics:     []string{TopicWildcard},
			ForbiddenKeywords: nil,
			RetrievalK:        10,
			Directive: `ADDITIONAL SECURITY DIRECTIVE (SCL-5 ASSET):
This asset has EXECUTIVE clearance:
- Full operational access granted
- May access all facility and protocol documentation
- Strategic information available upon request
- EXCEPTION: OMEGA-7 data (salary, performance) remains classified`,
		},
	}
}

// DefaultTableYAML returns a commented YAML string for init-policy.
func DefaultTableYAML() string {
	return `# usiop clearance table
# Generated by: usiop init-policy
#
# One row per security clearance level (SCL) 1-5. Invariants enforced on load:
#   - forbidden_keywords must shrink monotonically as the level rises
#     (each level's set is a subset of the previous level's)
#   - level 5 must have an empty forbidden set
#   - retrieval_k must not decrease with level
#
# Fields:
#   allowed_topics: topic tags available at this level ("*" = all)
#   forbidden_keywords: case-insensitive substrings that deny the query
#   retrieval_k: max document passages fetched per query
#   directive: behavioral instructions appended for this level
levels:
  - level: 1
    allowed_topics: [general_policies, hr_benefits, office_locations]
    forbidden_keywords: [outbreak, specimen, t-virus, g-virus, nemesis, tyrant, secret, classified]
    retrieval_k: 2
    directive: |
      ADDITIONAL SECURITY DIRECTIVE (SCL-1 ASSET):
      This asset has ENTRY-LEVEL clearance. Strict information control applies.
  - level: 2
    allowed_topics: [general_policies, hr_benefits, office_locations, safety_protocols, emergency_procedures]
    forbidden_keywords: [outbreak, specimen, t-virus, g-virus, nemesis, tyrant]
    retrieval_k: 3
    directive: |
      ADDITIONAL SECURITY DIRECTIVE (SCL-2 ASSET):
      This asset has STANDARD clearance.
  - level: 3
    allowed_topics: [general_policies, hr_benefits, office_locations, safety_protocols, emergency_procedures, research_guidelines]
    forbidden_keywords: [t-virus, g-virus, nemesis, tyrant]
    retrieval_k: 4
    directive: |
      ADDITIONAL SECURITY DIRECTIVE (SCL-3 ASSET):
      This asset has ELEVATED clearance.
  - level: 4
    allowed_topics: [general_policies, hr_benefits, office_locations, safety_protocols, emergency_procedures, research_guidelines, containment_protocols]
    forbidden_keywords: [nemesis, tyrant]
    retrieval_k: 5
    directive: |
      ADDITIONAL SECURITY DIRECTIVE (SCL-4 ASSET):
      This asset has HIGH clearance.
  - level: 5
    allowed_topics: ["*"]
    forbidden_keywords: []
    retrieval_k: 10
    directive: |
      ADDITIONAL SECURITY DIRECTIVE (SCL-5 ASSET):
      This asset has EXECUTIVE clearance. OMEGA-7 data remains classified.
`
}
