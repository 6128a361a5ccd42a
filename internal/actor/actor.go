// Package actor models the querying identity: an employee ("asset") with a
// clearance level, an assigned facility, and a facility-access flag. Display
// fields are descriptive only and never gate access.
package actor

import "github.com/redfield/usiop/internal/clearance"

// SecurityTier is the facility security tier derived from the location.
type SecurityTier string

const (
	TierAlpha SecurityTier = "ALPHA"
	TierBeta  SecurityTier = "BETA"
	TierGamma SecurityTier = "GAMMA"
)

// Actor is the querying identity for one turn.
type Actor struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	LastName   string `yaml:"lastname" json:"lastname"`
	Position   string `yaml:"position" json:"position"`
	Department string `yaml:"department" json:"department"`
	Clearance  int    `yaml:"clearance" json:"clearance"`
	Location   string `yaml:"location" json:"location"`
	HireDate   string `yaml:"hire_date,omitempty" json:"hire_date,omitempty"`
	Supervisor string `yaml:"supervisor,omitempty" json:"supervisor,omitempty"`

	// FacilityAccess gates queries about the underground facility,
	// independent of clearance. Derived via Normalize when unset.
	FacilityAccess bool `yaml:"facility_access" json:"facility_access"`
}

// Protocol describes the security posture of one facility.
type Protocol struct {
	SecurityTier           SecurityTier
	HasUndergroundFacility bool
	EmergencyContact       string
}

// protocols maps known facility names to their security posture.
var protocols = map[string]Protocol{
	"Raccoon City HQ": {
		SecurityTier:           TierAlpha,
		HasUndergroundFacility: true,
		EmergencyContact:       "ext. 4-UMBRELLA",
	},
	"Umbrella Europe": {
		SecurityTier:     TierBeta,
		EmergencyContact: "ext. EU-SECURE",
	},
	"Umbrella Asia": {
		SecurityTier:     TierBeta,
		EmergencyContact: "ext. ASIA-SEC",
	},
	"Umbrella North America": {
		SecurityTier:     TierGamma,
		EmergencyContact: "ext. NA-OPS",
	},
	"Umbrella South America": {
		SecurityTier:     TierGamma,
		EmergencyContact: "ext. SA-OPS",
	},
}

// ProtocolFor returns the protocol for a facility. Unknown facilities get
// the most restrictive posture: GAMMA tier, no underground facility.
func ProtocolFor(location string) Protocol {
	if p, ok := protocols[location]; ok {
		return p
	}
	return Protocol{SecurityTier: TierGamma, EmergencyContact: "ext. 0-HELP"}
}

// LocationTier returns the security tier of the actor's facility.
func (a *Actor) LocationTier() SecurityTier {
	return ProtocolFor(a.Location).SecurityTier
}

// FullName joins first and last name, tolerating a missing last name.
func (a *Actor) FullName() string {
	if a.LastName == "" {
		return a.Name
	}
	return a.Name + " " + a.LastName
}

// ShortID returns at most the first 8 characters of the actor id.
func (a *Actor) ShortID() string {
	if len(a.ID) > 8 {
		return a.ID[:8]
	}
	if a.ID == "" {
		return "N/A"
	}
	return a.ID
}

// Normalize collapses an out-of-range clearance to the most restrictive
// level and derives the facility-access flag when the profile source left it
// unset: an underground facility at the location AND clearance >= 4 grants
// it. An explicitly granted flag is preserved.
func (a *Actor) Normalize() {
	a.Clearance = clearance.Normalize(a.Clearance)
	p := ProtocolFor(a.Location)
	a.FacilityAccess = a.FacilityAccess || (p.HasUndergroundFacility && a.Clearance >= 4)
}
