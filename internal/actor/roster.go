package actor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster resolves actor profiles by id. It is a read-only snapshot loaded
// from a YAML file; the core treats each profile as per-turn input.
type Roster struct {
	byID  map[string]Actor
	order []string
}

type rosterFile struct {
	Actors []Actor `yaml:"actors"`
}

// LoadRoster reads an actor roster from a YAML file. Every loaded actor is
// normalized (clearance clamped, facility access derived).
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if len(f.Actors) == 0 {
		return nil, fmt.Errorf("roster %q contains no actors", path)
	}

	r := &Roster{byID: make(map[string]Actor, len(f.Actors))}
	for _, a := range f.Actors {
		if a.ID == "" {
			return nil, fmt.Errorf("roster %q contains an actor with no id", path)
		}
		if _, dup := r.byID[a.ID]; dup {
			return nil, fmt.Errorf("roster %q contains duplicate actor id %q", path, a.ID)
		}
		a.Normalize()
		r.byID[a.ID] = a
		r.order = append(r.order, a.ID)
	}
	return r, nil
}

// Lookup returns the actor with the given id.
func (r *Roster) Lookup(id string) (Actor, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns actor ids in file order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
