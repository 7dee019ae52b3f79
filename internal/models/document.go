// Package models defines core data structures for filters, JCSDL documents and saved documents.
package models

import "time"

// Document is an ordered list of filters joined by a single logic.
type Document struct {
	Version string    `json:"version,omitempty"`
	Logic   Logic     `json:"logic"`
	Filters []*Filter `json:"filters"`
}

// Equal reports whether two documents have the same logic and element-wise equal filters.
// Version is informational and not compared.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if NormalizeLogic(d.Logic) != NormalizeLogic(o.Logic) || len(d.Filters) != len(o.Filters) {
		return false
	}
	for i := range d.Filters {
		if !d.Filters[i].Equal(o.Filters[i]) {
			return false
		}
	}
	return true
}

// SavedDocument is a verified JCSDL document kept in storage.
type SavedDocument struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Logic       Logic     `json:"logic" db:"logic"`
	Hash        string    `json:"hash" db:"hash"`
	FilterCount int       `json:"filter_count" db:"filter_count"`
	JCSDL       string    `json:"jcsdl" db:"jcsdl"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for saving a document. Either JCSDL or Filters is set;
// when both are set JCSDL wins.
type DocumentInput struct {
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name"`
	JCSDL   string    `json:"jcsdl,omitempty"`
	Logic   Logic     `json:"logic,omitempty"`
	Filters []*Filter `json:"filters,omitempty"`
}

// FilterRef records where a saved document uses a field and an operator.
type FilterRef struct {
	DocumentID string `json:"document_id" db:"document_id"`
	Position   int    `json:"position" db:"position"`
	Target     string `json:"target" db:"target"`
	Path       string `json:"path" db:"path"`
	Operator   string `json:"operator" db:"operator"`
}

// NewFilterRefs lists the filters of doc as references owned by documentID.
func NewFilterRefs(documentID string, doc *Document) []*FilterRef {
	if doc == nil {
		return nil
	}
	refs := make([]*FilterRef, 0, len(doc.Filters))
	for i, f := range doc.Filters {
		refs = append(refs, &FilterRef{
			DocumentID: documentID,
			Position:   i,
			Target:     f.Target,
			Path:       f.Path(),
			Operator:   f.Operator,
		})
	}
	return refs
}
