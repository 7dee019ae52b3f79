// Package search runs full-text search over saved JCSDL documents.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/index"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/storage"
)

// defaultNameBoost ranks name matches above matches in CSDL text.
const defaultNameBoost = 3.0

// targetOnlyLimit bounds how many documents a target-only query reads.
const targetOnlyLimit = 1000

// Engine resolves index hits to stored documents.
type Engine struct {
	storage storage.Storage
	index   index.DocumentIndex
	opts    *index.SearchOptions
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithFuzzy enables typo-tolerant matching on names and CSDL text.
func WithFuzzy(fuzziness int) EngineOption {
	return func(e *Engine) {
		e.opts.FuzzyEnabled = true
		e.opts.Fuzziness = fuzziness
	}
}

// WithLogger sets a logger for stale index entries.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(store storage.Storage, idx index.DocumentIndex, opts ...EngineOption) *Engine {
	e := &Engine{
		storage: store,
		index:   idx,
		opts:    &index.SearchOptions{NameBoost: defaultNameBoost},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs query and returns ranked saved documents. Scores are normalized
// to [0,1] by the best hit.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	if query.Target != "" {
		ids, err := e.storage.FindDocumentsByTarget(ctx, query.Target)
		if err != nil {
			return nil, fmt.Errorf("target lookup failed: %w", err)
		}
		allowed = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			allowed[id] = struct{}{}
		}
	}

	var hits []*index.Result
	if query.Query == "" {
		for id := range allowed {
			hits = append(hits, &index.Result{ID: id, Score: 1})
		}
		sortByID(hits)
	} else {
		size := query.Limit
		if allowed != nil {
			size = targetOnlyLimit
		}
		results, err := e.index.Search(ctx, query.Query, size, e.opts)
		if err != nil {
			return nil, fmt.Errorf("index search failed: %w", err)
		}
		hits = results
	}

	scores := NormalizeScores(hits)
	response := &models.SearchResponse{Query: query.Query, Results: []*models.SearchResult{}}
	for _, hit := range hits {
		if len(response.Results) >= query.Limit {
			break
		}
		if allowed != nil {
			if _, ok := allowed[hit.ID]; !ok {
				continue
			}
		}
		doc, err := e.storage.GetDocument(ctx, hit.ID)
		if err != nil {
			e.logger.Debug("skipping stale index entry", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Document: doc,
			Score:    scores[hit.ID],
			Rank:     len(response.Results) + 1,
		})
	}
	response.Total = len(response.Results)
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}
