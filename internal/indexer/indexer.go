// Package indexer saves verified JCSDL documents into storage and the search index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/docid"
	"github.com/hyperjump/jcsdl/internal/index"
	"github.com/hyperjump/jcsdl/internal/jcsdl"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/storage"
)

// ErrInvalidInput is returned for save requests that carry neither JCSDL nor filters.
var ErrInvalidInput = errors.New("invalid document input")

// ErrNotIndexed is returned when a document was stored but the search index
// rejected it.
var ErrNotIndexed = errors.New("document saved but not indexed")

// CodecFunc returns a codec bound to the current schema. It is called once per
// operation so schema reloads apply to the next request.
type CodecFunc func() *jcsdl.Codec

// Indexer stores documents and keeps the search index in step with storage.
type Indexer struct {
	storage storage.Storage
	index   index.DocumentIndex
	codec   CodecFunc
	logger  *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for save, import and delete events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(storage storage.Storage, index index.DocumentIndex, codec CodecFunc, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		storage: storage,
		index:   index,
		codec:   codec,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// SaveDocument verifies and stores a document. JCSDL input must decode cleanly;
// filter input is encoded first and fails if any filter cannot be encoded.
// An existing document with the same ID is replaced.
//
// The document is stored before it is indexed. If indexing fails the stored
// document is kept and the returned error wraps ErrNotIndexed; Reindex repairs
// the search index.
func (idx *Indexer) SaveDocument(ctx context.Context, input *models.DocumentInput) (*models.SavedDocument, error) {
	codec := idx.codec()

	text := input.JCSDL
	if text == "" {
		if input.Filters == nil {
			return nil, fmt.Errorf("%w: jcsdl or filters required", ErrInvalidInput)
		}
		var skipped []error
		text, skipped = codec.EncodeDetailed(&models.Document{Logic: input.Logic, Filters: input.Filters})
		if len(skipped) > 0 {
			return nil, skipped[0]
		}
	}

	doc, err := codec.Decode(text)
	if err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		id = docid.New()
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "untitled"
	}
	saved := &models.SavedDocument{
		ID:          id,
		Name:        name,
		Logic:       doc.Logic,
		Hash:        masterHash(text),
		FilterCount: len(doc.Filters),
		JCSDL:       text,
	}
	refs := models.NewFilterRefs(id, doc)

	if _, err := idx.storage.GetDocument(ctx, id); err == nil {
		if err := idx.storage.UpdateDocument(ctx, saved, refs); err != nil {
			return nil, fmt.Errorf("failed to update document: %w", err)
		}
	} else if errors.Is(err, storage.ErrNotFound) {
		if err := idx.storage.CreateDocument(ctx, saved, refs); err != nil {
			return nil, fmt.Errorf("failed to store document: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}

	if err := idx.index.Index(ctx, id, index.NewEntry(name, doc, fragments(codec, doc))); err != nil {
		idx.logger.Warn("document saved but not indexed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: document %s: %w", ErrNotIndexed, id, err)
	}
	idx.logger.Debug("document saved", zap.String("id", id), zap.String("name", name), zap.Int("filters", saved.FilterCount))
	return saved, nil
}

// masterHash returns the hash token of the master line of verified JCSDL.
func masterHash(text string) string {
	_, rest, _ := strings.Cut(text, "\n")
	master, _, _ := strings.Cut(rest, "\n")
	fields := strings.Fields(master)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

// fragments renders the CSDL of every filter for full-text search.
func fragments(codec *jcsdl.Codec, doc *models.Document) string {
	parts := make([]string, 0, len(doc.Filters))
	for _, f := range doc.Filters {
		if block, err := codec.EncodeFilter(f); err == nil {
			parts = append(parts, block.CSDL)
		}
	}
	return strings.Join(parts, "\n")
}

// GetDocument returns a saved document together with its filters decoded under
// the current schema.
func (idx *Indexer) GetDocument(ctx context.Context, id string) (*models.SavedDocument, *models.Document, error) {
	saved, err := idx.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := idx.codec().Decode(saved.JCSDL)
	if err != nil {
		return saved, nil, err
	}
	return saved, doc, nil
}

// ImportFile saves a .jcsdl file under an ID derived from its path, named after
// the file. Re-importing the same path replaces the document.
func (idx *Indexer) ImportFile(ctx context.Context, path string) (*models.SavedDocument, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	base := filepath.Base(absPath)
	saved, err := idx.SaveDocument(ctx, &models.DocumentInput{
		ID:    docid.FromPath(absPath),
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
		JCSDL: string(data),
	})
	if err != nil {
		return nil, err
	}
	idx.logger.Info("file imported", zap.String("path", absPath), zap.String("doc_id", saved.ID))
	return saved, nil
}

// ForgetFile deletes the document imported from path, if any.
func (idx *Indexer) ForgetFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	err = idx.DeleteDocument(ctx, docid.FromPath(absPath))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteDocument removes a document from the index and storage.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if err := idx.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from index: %w", err)
	}
	idx.logger.Debug("document deleted", zap.String("id", id))
	return nil
}

// Reindex rebuilds the search entries of every stored document, e.g. after the
// index directory was removed. Documents that no longer decode are skipped and
// counted.
func (idx *Indexer) Reindex(ctx context.Context) (indexed, failed int, err error) {
	const page = 100
	codec := idx.codec()
	for offset := 0; ; offset += page {
		docs, err := idx.storage.ListDocuments(ctx, offset, page)
		if err != nil {
			return indexed, failed, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, saved := range docs {
			doc, err := codec.Decode(saved.JCSDL)
			if err != nil {
				idx.logger.Warn("stored document no longer decodes", zap.String("id", saved.ID), zap.Error(err))
				failed++
				continue
			}
			if err := idx.index.Index(ctx, saved.ID, index.NewEntry(saved.Name, doc, fragments(codec, doc))); err != nil {
				return indexed, failed, fmt.Errorf("failed to index document: %w", err)
			}
			indexed++
		}
		if len(docs) < page {
			return indexed, failed, nil
		}
	}
}
