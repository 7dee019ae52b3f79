package index

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// BleveIndex implements DocumentIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the mapping changes in code, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryIndex creates an in-memory index, used when no index path is configured.
func NewMemoryIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// standard analyzer: lowercase and tokenize, no stemming
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", text)
	docMapping.AddFieldMappingsAt("csdl", text)

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("targets", exact)
	docMapping.AddFieldMappingsAt("fields", exact)
	docMapping.AddFieldMappingsAt("operators", exact)

	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping
	return im
}

// Index indexes a saved document by id, replacing any previous entry.
func (b *BleveIndex) Index(ctx context.Context, id string, entry *Entry) error {
	return b.index.Index(id, entry)
}

// Search matches query against names and CSDL text, and each query token
// against targets, dotted field paths and operator names exactly.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	nameBoost := 1.0
	fuzziness := 0
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		if opts.FuzzyEnabled {
			fuzziness = 2
			if opts.Fuzziness > 0 {
				fuzziness = opts.Fuzziness
			}
		}
	}

	q := b.buildQuery(query, nameBoost, fuzziness)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (b *BleveIndex) buildQuery(query string, nameBoost float64, fuzziness int) blevequery.Query {
	var queries []blevequery.Query

	name := bleve.NewMatchQuery(query)
	name.SetField("name")
	name.SetBoost(nameBoost)
	if fuzziness > 0 {
		name.SetFuzziness(fuzziness)
	}
	queries = append(queries, name)

	csdl := bleve.NewMatchQuery(query)
	csdl.SetField("csdl")
	if fuzziness > 0 {
		csdl.SetFuzziness(fuzziness)
	}
	queries = append(queries, csdl)

	for _, token := range strings.Fields(query) {
		for _, field := range []string{"targets", "fields", "operators"} {
			tq := bleve.NewTermQuery(token)
			tq.SetField(field)
			queries = append(queries, tq)
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a document from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
