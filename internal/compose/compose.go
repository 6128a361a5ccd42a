// Package compose assembles the system instructions handed to the text
// generator. It performs no security filtering of its own: by the time a
// query reaches composition, the guard has already allowed it and retrieval
// breadth has already been scoped.
package compose

import (
	"fmt"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
)

// Composer builds generation instructions from the clearance table's
// directive rows.
type Composer struct {
	table *clearance.Table
}

// New creates a Composer. A nil table falls back to the defaults.
func New(table *clearance.Table) *Composer {
	if table == nil {
		table = clearance.DefaultTable()
	}
	return &Composer{table: table}
}

// Compose concatenates, in fixed order: the base persona with the actor's
// profile and retrieved context interpolated, the clearance-level directive
// block (level-1 text for unrecognized levels), and the location reminder
// (empty for unknown locations).
func (c *Composer) Compose(a actor.Actor, retrievedContext string) string {
	out := fmt.Sprintf(basePersona, FormatProfile(a), retrievedContext)
	out += "\n" + c.table.PolicyFor(a.Clearance).Directive

	if reminder := LocationReminder(a.Location); reminder != "" {
		out += "\n" + reminder
	}
	return out
}

// FormatProfile renders the actor's display fields for prompt interpolation.
func FormatProfile(a actor.Actor) string {
	access := "Standard Access Only"
	if a.FacilityAccess {
		access = "Level-4 Authorized"
	}
	return fmt.Sprintf(profileTemplate,
		orUnknown(a.FullName()),
		a.ShortID(),
		orDefault(a.Position, "Unassigned"),
		orDefault(a.Department, "Unassigned"),
		orUnknown(a.Location),
		a.LocationTier(),
		clearance.Normalize(a.Clearance),
		orUnknown(a.HireDate),
		orDefault(a.Supervisor, "Unassigned"),
		access,
	)
}

// LocationReminder returns the facility-specific security reminder, or the
// empty string for unrecognized locations.
func LocationReminder(location string) string {
	return locationReminders[location]
}

// Welcome renders the secure-connection banner for a new session.
func Welcome(a actor.Actor) string {
	return fmt.Sprintf(welcomeTemplate,
		orUnknown(a.FullName()),
		a.ShortID(),
		orDefault(a.Department, "Unassigned"),
		orDefault(a.Position, "Unassigned"),
		orUnknown(a.Location),
		a.LocationTier(),
		clearance.Normalize(a.Clearance),
	)
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
