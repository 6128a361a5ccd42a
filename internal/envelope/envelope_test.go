package envelope

import (
	"strings"
	"testing"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/guard"
)

func testActor() actor.Actor {
	return actor.Actor{
		ID:        "f47ac10b-58cc",
		Name:      "Chris",
		LastName:  "Redfield",
		Clearance: 3,
		Location:  "Raccoon City HQ",
	}
}

func TestWrapStandardEnvelope(t *testing.T) {
	got := Wrap(testActor(), "Badges must be worn at all times [Subsection 2.1].")

	for _, want := range []string{
		StartMarker,
		EndMarker,
		"Chris Redfield | f47ac10b | SCL-3 | Raccoon City HQ",
		"Badges must be worn at all times",
		"SECURITY COMPLIANCE NOTIFICATION",
		"HQ SECURITY REMINDER",
		`"Our business is life itself."`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("envelope missing %q:\n%s", want, got)
		}
	}
}

func TestWrapPassthroughWhenAlreadyFormatted(t *testing.T) {
	pre := StartMarker + "\nalready formatted\n" + EndMarker

	got := Wrap(testActor(), pre)
	if got != pre {
		t.Error("pre-formatted response must pass through unchanged")
	}
}

func TestWrapUnknownLocationNoReminder(t *testing.T) {
	a := testActor()
	a.Location = "Sheena Island"

	got := Wrap(a, "answer")
	if strings.Contains(got, "SECURITY REMINDER") {
		t.Error("unknown location must not add a reminder block")
	}
	if !strings.Contains(got, StartMarker) {
		t.Error("envelope still required")
	}
}

func TestFormatDenialConfidential(t *testing.T) {
	got := FormatDenial(guard.Result{
		Category: guard.CategoryConfidential,
		Keyword:  "salary",
		RefID:    "1234",
	})
	for _, want := range []string{StartMarker, EndMarker, "Protocol OMEGA-7", "OMEGA-1234"} {
		if !strings.Contains(got, want) {
			t.Errorf("confidential denial missing %q", want)
		}
	}
}

func TestFormatDenialFacility(t *testing.T) {
	got := FormatDenial(guard.Result{
		Category: guard.CategoryFacility,
		Keyword:  "underground",
		RefID:    "4242",
	})
	for _, want := range []string{"Facility Access Restriction", "LOC-4242", StartMarker, EndMarker} {
		if !strings.Contains(got, want) {
			t.Errorf("facility denial missing %q", want)
		}
	}
}

func TestFormatDenialClearance(t *testing.T) {
	got := FormatDenial(guard.Result{
		Category:      guard.CategoryClearance,
		Keyword:       "t-virus",
		RequiredLevel: 4,
		ActualLevel:   2,
		RefID:         "0042",
	})
	for _, want := range []string{"requires SCL-4", "(SCL-2)", "SCL-0042", "Form UC-401"} {
		if !strings.Contains(got, want) {
			t.Errorf("clearance denial missing %q:\n%s", want, got)
		}
	}
}

func TestDegradedKeepsEnvelopeStructure(t *testing.T) {
	got := Degraded()
	for _, want := range []string{StartMarker, EndMarker, "SYSTEM ALERT", "SECURITY COMPLIANCE NOTIFICATION"} {
		if !strings.Contains(got, want) {
			t.Errorf("degraded envelope missing %q", want)
		}
	}
}

func TestDenialsShareEnvelopeMarkers(t *testing.T) {
	results := []guard.Result{
		{Category: guard.CategoryConfidential, RefID: "1"},
		{Category: guard.CategoryFacility, RefID: "2"},
		{Category: guard.CategoryClearance, RequiredLevel: 3, ActualLevel: 1, RefID: "3"},
	}
	for _, res := range results {
		got := FormatDenial(res)
		if !strings.Contains(got, StartMarker) || !strings.Contains(got, EndMarker) {
			t.Errorf("denial %s lacks envelope markers", res.Category)
		}
	}
}
