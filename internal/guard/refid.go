package guard

import (
	"fmt"
	"hash/fnv"
)

// RefID derives a 4-digit reference code from the triggering text.
// Stable and reproducible for display in denial messages; not a security
// token.
func RefID(seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return fmt.Sprintf("%04d", h.Sum32()%10000)
}
