package models

import "fmt"

// SearchQuery is a full-text query over saved documents. Target, when set,
// restricts results to documents with a filter on that target.
type SearchQuery struct {
	Query  string `json:"query"`
	Target string `json:"target,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns an error if both query and target are empty; otherwise normalizes limit.
func (q *SearchQuery) Validate() error {
	if q.Query == "" && q.Target == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// SearchResult is a single saved-document hit.
type SearchResult struct {
	Document *SavedDocument `json:"document"`
	Score    float64        `json:"score"`
	Rank     int            `json:"rank"`
}

// SearchResponse is the response for a saved-document search.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}

// EncodeRequest asks for filters to be rendered as JCSDL.
type EncodeRequest struct {
	Logic   Logic     `json:"logic,omitempty"`
	Filters []*Filter `json:"filters"`
}

// EncodeResponse carries the JCSDL text and the filters that could not be encoded.
type EncodeResponse struct {
	JCSDL   string           `json:"jcsdl"`
	Skipped []*SkippedFilter `json:"skipped,omitempty"`
}

// SkippedFilter describes a filter dropped from an encode.
type SkippedFilter struct {
	Index  int    `json:"index"`
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// VerifyResponse reports whether a JCSDL document decodes cleanly.
type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Filters int    `json:"filters,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}
