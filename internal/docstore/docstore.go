// Package docstore is the bundled document store binding: a SQLite FTS5
// index over policy documents. It satisfies the retrieval Searcher contract
// so deployments without an external vector store still get local
// similarity search. Embedding-based stores remain a pluggable collaborator.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/redfield/usiop/internal/retrieval"
)

// Store is a SQLite-backed full-text document index.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the document index at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("docstore: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("docstore: pragma %q: %w", p, err)
		}
	}

	schema := `CREATE VIRTUAL TABLE IF NOT EXISTS documents USING fts5(
		source,
		content
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: create index: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add indexes one document passage under a source label.
func (s *Store) Add(ctx context.Context, source, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("docstore: empty content")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (source, content) VALUES (?, ?)", source, content)
	if err != nil {
		return fmt.Errorf("docstore: insert: %w", err)
	}
	return nil
}

// IngestFile splits a file into paragraph passages (blank-line delimited)
// and indexes each under the file's base name. Returns the passage count.
func (s *Store) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("docstore: read %s: %w", path, err)
	}

	source := filepath.Base(path)
	count := 0
	for _, para := range strings.Split(string(data), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if err := s.Add(ctx, source, para); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Count returns the number of indexed passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM documents").Scan(&n)
	return n, err
}

// Search returns up to k passages matching the query, best first, with
// scores normalized to (0, 1). Passages below minScore are dropped.
// Implements the retrieval Searcher contract.
func (s *Store) Search(ctx context.Context, query string, k int, minScore float64) ([]retrieval.Passage, error) {
	match := buildMatch(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, content, rank FROM documents
		 WHERE documents MATCH ? ORDER BY rank LIMIT ?`, match, k)
	if err != nil {
		return nil, fmt.Errorf("docstore: search: %w", err)
	}
	defer rows.Close()

	var out []retrieval.Passage
	for rows.Next() {
		var p retrieval.Passage
		var rank float64
		if err := rows.Scan(&p.Source, &p.Text, &rank); err != nil {
			return nil, fmt.Errorf("docstore: scan: %w", err)
		}
		p.Score = normalizeRank(rank)
		if p.Score < minScore {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// normalizeRank maps an FTS5 bm25 rank (negative, more negative = better)
// into (0, 1), monotonically: strong matches approach 1.
func normalizeRank(rank float64) float64 {
	r := -rank
	if r <= 0 {
		return 0
	}
	return r / (r + 1)
}

// buildMatch turns free text into an FTS5 OR query of quoted terms,
// neutralizing MATCH syntax in user input.
func buildMatch(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}
