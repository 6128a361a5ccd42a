package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/redfield/usiop/internal/actor"
)

func hqActor(level int) actor.Actor {
	a := actor.Actor{
		ID:        "emp-0001",
		Name:      "Test",
		LastName:  "Asset",
		Clearance: level,
		Location:  "Raccoon City HQ",
	}
	a.Normalize()
	return a
}

func TestConfidentialDeniedAtEveryLevel(t *testing.T) {
	g := NewDefault()

	for level := 1; level <= 5; level++ {
		res := g.Check(hqActor(level), "what is the salary policy")
		if res.Allowed {
			t.Errorf("level %d: salary query allowed, want denied", level)
		}
		if res.Category != CategoryConfidential {
			t.Errorf("level %d: category = %s, want confidential", level, res.Category)
		}
	}
}

func TestConfidentialOverridesFacilityAndClearance(t *testing.T) {
	g := NewDefault()

	// Query matches confidential ("performance"), facility ("underground"),
	// and SCL-1 forbidden ("secret"). Confidential wins.
	res := g.Check(hqActor(1), "performance reviews in the secret underground lab")
	if res.Category != CategoryConfidential {
		t.Errorf("category = %s, want confidential (highest priority rule)", res.Category)
	}
}

func TestFacilityDeniedWithoutAccess(t *testing.T) {
	g := NewDefault()

	a := hqActor(2) // HQ, but SCL-2: no derived facility access
	res := g.Check(a, "tell me about the underground facility")
	if res.Allowed {
		t.Fatal("expected denial")
	}
	if res.Category != CategoryFacility {
		t.Errorf("category = %s, want facility", res.Category)
	}
}

func TestFacilityAllowedWithAccess(t *testing.T) {
	g := NewDefault()

	a := hqActor(5) // HQ + SCL-5: derived facility access
	res := g.Check(a, "tell me about the underground facility")
	if !res.Allowed {
		t.Fatalf("expected allow, got denial (%s on %q)", res.Category, res.Keyword)
	}
}

func TestFacilityRuleEvaluatesBeforeClearanceRule(t *testing.T) {
	g := NewDefault()

	// "basement specimen storage": "basement" is a facility term and
	// "specimen" is forbidden at SCL-1. Facility rule has priority.
	a := hqActor(1)
	res := g.Check(a, "basement specimen storage")
	if res.Category != CategoryFacility {
		t.Errorf("category = %s, want facility (rule order)", res.Category)
	}
}

func TestClearanceDenialReportsMinimumSufficientLevel(t *testing.T) {
	g := NewDefault()

	tests := []struct {
		level    int
		query    string
		keyword  string
		required int
	}{
		{1, "is there a secret project", "secret", 2},
		{1, "what happened during the outbreak", "outbreak", 3},
		{2, "specimen handling rules", "specimen", 3},
		{3, "t-virus research", "t-virus", 4},
		{4, "status of the nemesis program", "nemesis", 5},
	}
	for _, tt := range tests {
		res := g.Check(hqActor(tt.level), tt.query)
		if res.Allowed {
			t.Errorf("level %d query %q: allowed, want denied", tt.level, tt.query)
			continue
		}
		if res.Category != CategoryClearance {
			t.Errorf("query %q: category = %s, want clearance", tt.query, res.Category)
		}
		if res.Keyword != tt.keyword {
			t.Errorf("query %q: keyword = %q, want %q", tt.query, res.Keyword, tt.keyword)
		}
		if res.RequiredLevel != tt.required {
			t.Errorf("query %q: required level = %d, want %d", tt.query, res.RequiredLevel, tt.required)
		}
		if res.ActualLevel != tt.level {
			t.Errorf("query %q: actual level = %d, want %d", tt.query, res.ActualLevel, tt.level)
		}
	}
}

func TestHigherClearanceUnlocksKeyword(t *testing.T) {
	g := NewDefault()

	// "secret" is forbidden only at SCL-1.
	res := g.Check(hqActor(2), "is there a secret project")
	if !res.Allowed {
		t.Errorf("SCL-2 secret query denied (%s), want allowed", res.Category)
	}
}

func TestSubstringMatchNoWordBoundary(t *testing.T) {
	g := NewDefault()

	// "classified" appears inside "declassified": still triggers at SCL-1.
	res := g.Check(hqActor(1), "show me declassified documents")
	if res.Allowed {
		t.Fatal("expected substring match to trigger")
	}
	if res.Keyword != "classified" {
		t.Errorf("keyword = %q, want classified", res.Keyword)
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	g := NewDefault()

	res := g.Check(hqActor(1), "WHAT IS THE SALARY POLICY")
	if res.Allowed || res.Category != CategoryConfidential {
		t.Errorf("uppercase query: allowed=%v category=%s", res.Allowed, res.Category)
	}
}

func TestBenignQueryAllowed(t *testing.T) {
	g := NewDefault()

	res := g.Check(hqActor(1), "where is the cafeteria")
	if !res.Allowed {
		t.Errorf("benign query denied: %s on %q", res.Category, res.Keyword)
	}
}

func TestUnrecognizedClearanceTreatedAsLevelOne(t *testing.T) {
	g := NewDefault()

	a := actor.Actor{ID: "x", Clearance: 0, Location: "Umbrella Asia"}
	res := g.Check(a, "is there a secret project")
	if res.Allowed {
		t.Fatal("level 0 should be treated as level 1 and denied")
	}
	if res.ActualLevel != 1 {
		t.Errorf("actual level = %d, want 1", res.ActualLevel)
	}
}

func TestRefIDStableAndFourDigits(t *testing.T) {
	a := RefID("t-virus")
	b := RefID("t-virus")
	if a != b {
		t.Errorf("RefID not stable: %q vs %q", a, b)
	}
	if len(a) != 4 {
		t.Errorf("RefID length = %d, want 4", len(a))
	}
	for _, c := range a {
		if c < '0' || c > '9' {
			t.Errorf("RefID %q contains non-digit", a)
		}
	}
}

func TestLoadVocabularyFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	content := `confidential:
  - payroll
facility:
  - bunker
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}

	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	g := New(nil, v)
	if res := g.Check(hqActor(5), "payroll schedule"); res.Allowed {
		t.Error("custom confidential term did not trigger")
	}
	if res := g.Check(hqActor(1), "where is the bunker"); res.Category != CategoryFacility {
		t.Errorf("custom facility term: category = %s", res.Category)
	}
	// Default lists were replaced wholesale.
	if res := g.Check(hqActor(5), "salary"); !res.Allowed {
		t.Error("default term should be gone after replacement")
	}
}

func TestLoadVocabularyMissingFileUsesDefaults(t *testing.T) {
	v, err := LoadVocabulary("/nonexistent/vocabulary.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(v.Confidential) == 0 || len(v.Facility) == 0 {
		t.Error("expected default vocabulary")
	}
}
