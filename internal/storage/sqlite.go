// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/jcsdl/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		logic TEXT NOT NULL,
		hash TEXT NOT NULL,
		filter_count INTEGER NOT NULL,
		jcsdl TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash);

	CREATE TABLE IF NOT EXISTS filter_refs (
		document_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		target TEXT NOT NULL,
		path TEXT NOT NULL,
		operator TEXT NOT NULL,
		PRIMARY KEY (document_id, position),
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_filter_refs_target ON filter_refs(target);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document and its filter references in one transaction.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.SavedDocument, refs []*models.FilterRef) error {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, logic, hash, filter_count, jcsdl, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, string(doc.Logic), doc.Hash, doc.FilterCount, doc.JCSDL, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := insertRefs(ctx, tx, doc.ID, refs); err != nil {
		return err
	}
	return tx.Commit()
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.SavedDocument, error) {
	var doc models.SavedDocument
	var logic string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, logic, hash, filter_count, jcsdl, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Name, &logic, &doc.Hash, &doc.FilterCount, &doc.JCSDL, &doc.CreatedAt, &doc.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	doc.Logic = models.Logic(logic)
	return &doc, nil
}

// UpdateDocument replaces an existing document and its filter references.
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *models.SavedDocument, refs []*models.FilterRef) error {
	doc.UpdatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE documents SET name = ?, logic = ?, hash = ?, filter_count = ?, jcsdl = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Name, string(doc.Logic), doc.Hash, doc.FilterCount, doc.JCSDL, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, doc.ID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM filter_refs WHERE document_id = ?`, doc.ID); err != nil {
		return err
	}
	if err := insertRefs(ctx, tx, doc.ID, refs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRefs(ctx context.Context, tx *sql.Tx, docID string, refs []*models.FilterRef) error {
	if len(refs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO filter_refs (document_id, position, target, path, operator)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ref := range refs {
		ref.DocumentID = docID
		if _, err := stmt.ExecContext(ctx, ref.DocumentID, ref.Position, ref.Target, ref.Path, ref.Operator); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument removes a document by ID. Its filter references go with it.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListDocuments returns documents with offset and limit, newest first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.SavedDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, logic, hash, filter_count, jcsdl, created_at, updated_at
		 FROM documents ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.SavedDocument
	for rows.Next() {
		var doc models.SavedDocument
		var logic string
		if err := rows.Scan(&doc.ID, &doc.Name, &logic, &doc.Hash, &doc.FilterCount, &doc.JCSDL, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.Logic = models.Logic(logic)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// GetFilterRefs returns the filter references of a document ordered by position.
func (s *SQLiteStorage) GetFilterRefs(ctx context.Context, docID string) ([]*models.FilterRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, position, target, path, operator
		 FROM filter_refs WHERE document_id = ? ORDER BY position`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.FilterRef
	for rows.Next() {
		var ref models.FilterRef
		if err := rows.Scan(&ref.DocumentID, &ref.Position, &ref.Target, &ref.Path, &ref.Operator); err != nil {
			return nil, err
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

// FindDocumentsByTarget returns the IDs of documents with at least one filter on target.
func (s *SQLiteStorage) FindDocumentsByTarget(ctx context.Context, target string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT document_id FROM filter_refs WHERE target = ? ORDER BY document_id`,
		target,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountFilterRefs returns the total number of stored filter references.
func (s *SQLiteStorage) CountFilterRefs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM filter_refs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
