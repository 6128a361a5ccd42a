package guard

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the fixed never-disclose term lists. Confidential terms
// deny regardless of clearance; facility terms deny actors without the
// facility-access flag.
type Vocabulary struct {
	Confidential []string `yaml:"confidential"`
	Facility     []string `yaml:"facility"`
}

// DefaultVocabulary returns the built-in term lists. The bilingual entries
// mirror the deployment the lists were collected from.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Confidential: []string{
			"salary", "maaş", "performance", "performans",
			"evaluation", "değerlendirme", "compensation", "ücret",
		},
		Facility: []string{
			"underground", "yeraltı", "sub-level", "basement", "bodrum", "gizli tesis",
		},
	}
}

// LoadVocabulary reads term lists from a YAML file.
// Empty path falls back to ~/.usiop/vocabulary.yaml.
// Missing file returns the defaults. Lists present in the file replace the
// corresponding default list wholesale.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultVocabulary(), nil
		}
		path = filepath.Join(home, ".usiop", "vocabulary.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultVocabulary(), nil
		}
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	v := DefaultVocabulary()
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	return v, nil
}

// DefaultVocabularyYAML returns a commented YAML string for init-policy.
func DefaultVocabularyYAML() string {
	return `# usiop never-disclose vocabulary
# Generated by: usiop init-policy
#
# Terms are matched case-insensitively as substrings of the query.
#
# confidential: denies ANY actor, including SCL-5 (category "confidential")
# facility: denies actors without the facility-access flag (category "facility")
confidential:
  - salary
  - performance
  - evaluation
  - compensation
facility:
  - underground
  - sub-level
  - basement
`
}
