package guard

import (
	"strings"
	"testing"
)

// FuzzCheck verifies the guard never panics and that its decision agrees
// with a direct substring scan of the vocabularies.
func FuzzCheck(f *testing.F) {
	f.Add("what is the salary policy")
	f.Add("tell me about the underground facility")
	f.Add("t-virus")
	f.Add("")
	f.Add("ÜCRET bilgisi")
	f.Add(strings.Repeat("a", 4096))

	g := NewDefault()
	vocab := DefaultVocabulary()

	f.Fuzz(func(t *testing.T, query string) {
		a := hqActor(1)
		res := g.Check(a, query)

		lower := strings.ToLower(query)
		confidential := false
		for _, kw := range vocab.Confidential {
			if strings.Contains(lower, strings.ToLower(kw)) {
				confidential = true
				break
			}
		}
		if confidential && res.Allowed {
			t.Errorf("query %q contains confidential term but was allowed", query)
		}
		if !res.Allowed && res.RefID == "" {
			t.Errorf("denial without ref id for query %q", query)
		}
	})
}
