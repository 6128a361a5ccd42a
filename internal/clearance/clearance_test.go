package clearance

import "testing"

func TestDefaultTableValid(t *testing.T) {
	tab := DefaultTable()
	if err := tab.Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestRetrievalBreadthMonotonic(t *testing.T) {
	tab := DefaultTable()

	want := map[int]int{1: 2, 2: 3, 3: 4, 4: 5, 5: 10}
	prev := 0
	for level := 1; level <= 5; level++ {
		k := tab.RetrievalK(level)
		if k != want[level] {
			t.Errorf("RetrievalK(%d) = %d, want %d", level, k, want[level])
		}
		if k < prev {
			t.Errorf("RetrievalK(%d) = %d decreased below %d", level, k, prev)
		}
		prev = k
	}
}

func TestNormalizeFallsBackToMostRestrictive(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{6, 1},
		{99, 1},
		{1, 1},
		{3, 3},
		{5, 5},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPolicyForUnknownLevel(t *testing.T) {
	tab := DefaultTable()

	p := tab.PolicyFor(42)
	if p.Level != 1 {
		t.Errorf("PolicyFor(42).Level = %d, want 1", p.Level)
	}
	if p.RetrievalK != 2 {
		t.Errorf("PolicyFor(42).RetrievalK = %d, want 2", p.RetrievalK)
	}
}

func TestRequiredLevelFor(t *testing.T) {
	tab := DefaultTable()

	tests := []struct {
		keyword string
		want    int
	}{
		{"secret", 2},     // only level 1 forbids it
		{"classified", 2}, // same
		{"outbreak", 3},   // levels 1-2 forbid it
		{"specimen", 3},
		{"t-virus", 4}, // levels 1-3 forbid it
		{"g-virus", 4},
		{"nemesis", 5}, // levels 1-4 forbid it
		{"tyrant", 5},
		{"TYRANT", 5},  // case-insensitive
		{"coffee", 1},  // never forbidden
	}
	for _, tt := range tests {
		if got := tab.RequiredLevelFor(tt.keyword); got != tt.want {
			t.Errorf("RequiredLevelFor(%q) = %d, want %d", tt.keyword, got, tt.want)
		}
	}
}

func TestForbiddenSetsShrinkMonotonically(t *testing.T) {
	rows := DefaultTable().Rows()
	for i := 1; i < len(rows); i++ {
		for _, kw := range rows[i].ForbiddenKeywords {
			if !containsKeyword(rows[i-1].ForbiddenKeywords, kw) {
				t.Errorf("level %d forbids %q but level %d does not", rows[i].Level, kw, rows[i-1].Level)
			}
		}
	}
	if n := len(rows[4].ForbiddenKeywords); n != 0 {
		t.Errorf("level 5 has %d forbidden keywords, want 0", n)
	}
}

func TestNewTableRejectsNonSubsetForbiddenSets(t *testing.T) {
	rows := defaultRows()
	// Level 3 invents a keyword level 2 does not forbid.
	rows[2].ForbiddenKeywords = append(rows[2].ForbiddenKeywords, "hunter")

	if _, err := NewTable(rows); err == nil {
		t.Fatal("expected error for non-subset forbidden sets")
	}
}

func TestNewTableRejectsDecreasingBreadth(t *testing.T) {
	rows := defaultRows()
	rows[3].RetrievalK = 1

	if _, err := NewTable(rows); err == nil {
		t.Fatal("expected error for decreasing retrieval_k")
	}
}

func TestNewTableRejectsMissingLevel(t *testing.T) {
	rows := defaultRows()[:4]

	if _, err := NewTable(rows); err == nil {
		t.Fatal("expected error for missing level")
	}
}

func TestTopLevelHasWildcardTopics(t *testing.T) {
	p := DefaultTable().PolicyFor(5)
	if len(p.AllowedTopics) != 1 || p.AllowedTopics[0] != TopicWildcard {
		t.Errorf("level 5 topics = %v, want [%s]", p.AllowedTopics, TopicWildcard)
	}
}
