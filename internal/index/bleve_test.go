package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/jcsdl/internal/models"
)

func sampleEntries() map[string]*Entry {
	bob := &models.Document{Filters: []*models.Filter{
		{Target: "twitter", FieldPath: []string{"user", "name"}, Operator: "equals", Value: "bob"},
		{Target: "klout", FieldPath: []string{"score"}, Operator: "greaterThan", Value: "40"},
	}}
	fb := &models.Document{Filters: []*models.Filter{
		{Target: "facebook", FieldPath: []string{"message"}, Operator: "contains", Value: "marathon"},
	}}
	return map[string]*Entry{
		"doc-bob": NewEntry("Influential Bob", bob, `twitter.user.name == "bob" klout.score > 40`),
		"doc-fb":  NewEntry("Running fans", fb, `facebook.message contains "marathon"`),
	}
}

func indexAll(t *testing.T, idx DocumentIndex) {
	t.Helper()
	for id, e := range sampleEntries() {
		if err := idx.Index(context.Background(), id, e); err != nil {
			t.Fatalf("Index(%s): %v", id, err)
		}
	}
}

func TestBleveIndex_Search(t *testing.T) {
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	indexAll(t, idx)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"by name", "influential", "doc-bob"},
		{"by csdl literal", "marathon", "doc-fb"},
		{"by target", "facebook", "doc-fb"},
		{"by dotted field path", "twitter.user.name", "doc-bob"},
		{"by operator", "greaterThan", "doc-bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(context.Background(), tt.query, 10, nil)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(results) == 0 {
				t.Fatalf("no results for %q", tt.query)
			}
			if results[0].ID != tt.want {
				t.Errorf("first result = %s, want %s", results[0].ID, tt.want)
			}
		})
	}
}

func TestBleveIndex_FuzzyAndDelete(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	indexAll(t, idx)
	ctx := context.Background()

	results, err := idx.Search(ctx, "marathn", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("exact search should not match a typo, got %d results", len(results))
	}
	results, err = idx.Search(ctx, "marathn", 10, &SearchOptions{FuzzyEnabled: true, Fuzziness: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].ID != "doc-fb" {
		t.Errorf("fuzzy search results = %+v", results)
	}

	if err := idx.Delete(ctx, "doc-fb"); err != nil {
		t.Fatal(err)
	}
	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DocCount = %d, want 1", n)
	}
	results, _ = idx.Search(ctx, "facebook", 10, nil)
	if len(results) != 0 {
		t.Errorf("deleted document still found: %+v", results)
	}
}

func TestBleveIndex_ReopenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	indexAll(t, idx)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	n, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DocCount after reopen = %d, want 2", n)
	}
}

func TestNewEntry(t *testing.T) {
	doc := &models.Document{Filters: []*models.Filter{
		{Target: "twitter", FieldPath: []string{"text"}, Operator: "contains"},
		{Target: "twitter", FieldPath: []string{"text"}, Operator: "substr"},
		{Target: "klout", FieldPath: []string{"score"}, Operator: "contains"},
	}}
	e := NewEntry("n", doc, "csdl")
	if len(e.Targets) != 2 || e.Targets[0] != "klout" || e.Targets[1] != "twitter" {
		t.Errorf("targets = %v", e.Targets)
	}
	if len(e.Fields) != 2 || e.Fields[1] != "twitter.text" {
		t.Errorf("fields = %v", e.Fields)
	}
	if len(e.Operators) != 2 {
		t.Errorf("operators = %v", e.Operators)
	}
	if NewEntry("x", nil, "").Targets != nil {
		t.Error("nil document should give empty entry")
	}
}
