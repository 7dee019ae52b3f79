// Package index provides full-text search over saved JCSDL documents.
package index

import (
	"context"
	"sort"

	"github.com/hyperjump/jcsdl/internal/models"
)

// SearchOptions optional parameters for document search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies the score of matches in the document name. Use 1.0 for no boost.
	NameBoost float64
	// FuzzyEnabled enables typo tolerance on the free-text fields.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	Fuzziness int
}

// DocumentIndex defines saved-document search operations.
type DocumentIndex interface {
	Index(ctx context.Context, id string, entry *Entry) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// Result is a single search hit.
type Result struct {
	ID    string
	Score float64
}

// Entry is the searchable projection of a saved document.
type Entry struct {
	Name      string   `json:"name"`
	Targets   []string `json:"targets"`
	Fields    []string `json:"fields"`
	Operators []string `json:"operators"`
	CSDL      string   `json:"csdl"`
}

// NewEntry builds the index entry for a decoded document. csdl is the
// concatenated CSDL fragments of its filters.
func NewEntry(name string, doc *models.Document, csdl string) *Entry {
	e := &Entry{Name: name, CSDL: csdl}
	if doc == nil {
		return e
	}
	e.Targets = distinct(doc.Filters, func(f *models.Filter) string { return f.Target })
	e.Fields = distinct(doc.Filters, func(f *models.Filter) string { return f.Path() })
	e.Operators = distinct(doc.Filters, func(f *models.Filter) string { return f.Operator })
	return e
}

func distinct(filters []*models.Filter, key func(*models.Filter) string) []string {
	seen := make(map[string]struct{}, len(filters))
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		k := key(f)
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
