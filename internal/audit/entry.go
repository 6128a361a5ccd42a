package audit

// Entry is one line in the hash-chained JSONL decision log. Every guard
// decision is recorded, allowed or denied, so the log is a complete record
// of what each asset asked and what the gate did with it.
// All fields are flat scalars to guarantee deterministic json.Marshal field
// order for reproducible hashing.
type Entry struct {
	Timestamp     string `json:"ts"`
	SessionID     string `json:"session_id"`
	ActorID       string `json:"actor_id"`
	Clearance     int    `json:"clearance"`
	Decision      string `json:"decision"`
	Category      string `json:"category,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
	RequiredLevel int    `json:"required_level,omitempty"`
	RefID         string `json:"ref_id,omitempty"`
	PolicyHash    string `json:"policy_hash,omitempty"`
	PrevHash      string `json:"prev_hash"`
}

// Decision values recorded in Entry.Decision.
const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)
