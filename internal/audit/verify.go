package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify reads a JSONL decision log and validates the hash chain, reporting
// the first broken link if any.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNum := 0
	var prev []byte

	for sc.Scan() {
		lineNum++
		line := make([]byte, len(sc.Bytes()))
		copy(line, sc.Bytes())

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return VerifyResult{Error: fmt.Sprintf("parse error: %v", err), ErrorLine: lineNum}
		}

		want := GenesisHash
		if lineNum > 1 {
			want = HashLine(prev)
		}
		if e.PrevHash != want {
			return VerifyResult{
				Error:     fmt.Sprintf("hash mismatch: expected %s, got %s", want, e.PrevHash),
				ErrorLine: lineNum,
			}
		}
		prev = line
	}
	if err := sc.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}
	return VerifyResult{Valid: true, Lines: lineNum}
}
