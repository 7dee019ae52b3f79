// Package storage defines the persistence interface for saved JCSDL documents.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/jcsdl/internal/models"
)

// ErrNotFound is returned when a saved document does not exist.
var ErrNotFound = errors.New("document not found")

// Storage defines saved-document persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.SavedDocument, refs []*models.FilterRef) error
	GetDocument(ctx context.Context, id string) (*models.SavedDocument, error)
	UpdateDocument(ctx context.Context, doc *models.SavedDocument, refs []*models.FilterRef) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.SavedDocument, error)

	// Filter references
	GetFilterRefs(ctx context.Context, docID string) ([]*models.FilterRef, error)
	FindDocumentsByTarget(ctx context.Context, target string) ([]string, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountFilterRefs(ctx context.Context) (int64, error)

	Close() error
}
