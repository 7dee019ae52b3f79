// Package cli provides output helpers for the jcsdl command.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/jcsdl/internal/jcsdl"
	"github.com/hyperjump/jcsdl/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteDocument writes a decoded document to w in the given format.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, doc)
	}
	fmt.Fprintf(w, "JCSDL %s, %d filter(s) joined by %s\n", doc.Version, len(doc.Filters), doc.Logic)
	for i, f := range doc.Filters {
		fmt.Fprintf(w, "%3d  %s %s", i+1, f.Path(), f.Operator)
		if f.Value != "" {
			fmt.Fprintf(w, " %q", f.Value)
		}
		if f.CaseSensitive {
			fmt.Fprint(w, " (case sensitive)")
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteSkipped reports filters an encode left out, one line each.
func WriteSkipped(w io.Writer, skipped []error) {
	for _, err := range skipped {
		var fe *jcsdl.FilterError
		if errors.As(err, &fe) {
			fmt.Fprintf(w, "skipped filter %d (%s): %s [%s]\n", fe.Index+1, fe.Path, fe.Err, jcsdl.Kind(err))
			continue
		}
		fmt.Fprintf(w, "skipped filter: %v\n", err)
	}
}

// WriteSavedDocuments writes one page of stored documents to w.
func WriteSavedDocuments(w io.Writer, docs []*models.SavedDocument, total int64, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []*models.SavedDocument{}
		}
		return writeJSON(w, map[string]interface{}{"documents": docs, "total": total})
	}
	fmt.Fprintf(w, "%d of %d document(s)\n", len(docs), total)
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %-3s %2d  %s  %s\n",
			d.ID, d.Logic, d.FilterCount, d.UpdatedAt.Format("2006-01-02 15:04"), Truncate(d.Name, 60))
	}
	return nil
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", result.Rank, result.Score)
		fmt.Fprintf(w, "ID: %s\n", result.Document.ID)
		fmt.Fprintf(w, "Name: %s\n", result.Document.Name)
		fmt.Fprintf(w, "Filters: %d (%s)\n", result.Document.FilterCount, result.Document.Logic)
		fmt.Fprintln(w)
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
