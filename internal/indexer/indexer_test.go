package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/jcsdl/internal/docid"
	"github.com/hyperjump/jcsdl/internal/index"
	"github.com/hyperjump/jcsdl/internal/jcsdl"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/schema"
	"github.com/hyperjump/jcsdl/internal/storage"
)

func newTestIndexer(t *testing.T) (*Indexer, *storage.SQLiteStorage, *index.BleveIndex) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	idx, err := index.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	codec := func() *jcsdl.Codec { return jcsdl.New(schema.Default()) }
	return NewIndexer(store, idx, codec), store, idx
}

func bobFilters() []*models.Filter {
	return []*models.Filter{
		{Target: "twitter", FieldPath: []string{"user", "name"}, Operator: "equals", Value: "bob"},
		{Target: "klout", FieldPath: []string{"score"}, Operator: "greaterThan", Value: "40"},
	}
}

func TestIndexer_SaveFromFilters(t *testing.T) {
	ix, store, idx := newTestIndexer(t)
	ctx := context.Background()

	saved, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: " Bob ", Logic: models.LogicOr, Filters: bobFilters()})
	if err != nil {
		t.Fatal(err)
	}
	if err := docid.Validate(saved.ID); err != nil {
		t.Error(err)
	}
	if saved.Name != "Bob" || saved.Logic != models.LogicOr || saved.FilterCount != 2 {
		t.Errorf("saved = %+v", saved)
	}
	if len(saved.Hash) != 32 || !strings.Contains(saved.JCSDL, saved.Hash) {
		t.Errorf("hash %q should be the master hash of the stored JCSDL", saved.Hash)
	}

	refs, err := store.GetFilterRefs(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Errorf("refs = %d", len(refs))
	}

	results, err := idx.Search(ctx, "klout", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != saved.ID {
		t.Errorf("search results = %+v", results)
	}

	got, doc, err := ix.GetDocument(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != saved.ID || !doc.Equal(&models.Document{Logic: models.LogicOr, Filters: bobFilters()}) {
		t.Errorf("GetDocument = %+v, %+v", got, doc)
	}
}

func TestIndexer_SaveRejectsInvalidInput(t *testing.T) {
	ix, store, _ := newTestIndexer(t)
	ctx := context.Background()

	if _, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: "empty"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	bad := append(bobFilters(), &models.Filter{Target: "myspace", Operator: "exists"})
	_, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: "bad", Filters: bad})
	if jcsdl.Kind(err) != jcsdl.KindUnknownTarget {
		t.Errorf("expected unknown target, got %v", err)
	}

	text := jcsdl.New(schema.Default()).Encode(&models.Document{Filters: bobFilters()})
	tampered := strings.Replace(text, "> 40", "> 41", 1)
	_, err = ix.SaveDocument(ctx, &models.DocumentInput{Name: "tampered", JCSDL: tampered})
	if !errors.Is(err, jcsdl.ErrIntegrity) {
		t.Errorf("expected integrity error, got %v", err)
	}

	n, _ := store.CountDocuments(ctx)
	if n != 0 {
		t.Errorf("nothing should be stored, got %d documents", n)
	}
}

func TestIndexer_SaveReplacesExisting(t *testing.T) {
	ix, store, _ := newTestIndexer(t)
	ctx := context.Background()

	first, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: "v1", Filters: bobFilters()})
	if err != nil {
		t.Fatal(err)
	}
	second, err := ix.SaveDocument(ctx, &models.DocumentInput{ID: first.ID, Name: "v2", Filters: bobFilters()[:1]})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("id changed: %s -> %s", first.ID, second.ID)
	}
	n, _ := store.CountDocuments(ctx)
	if n != 1 {
		t.Errorf("documents = %d, want 1", n)
	}
	got, _ := store.GetDocument(ctx, first.ID)
	if got.Name != "v2" || got.FilterCount != 1 {
		t.Errorf("stored = %+v", got)
	}
}

func TestIndexer_ImportAndForgetFile(t *testing.T) {
	ix, store, idx := newTestIndexer(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "bob-watch.jcsdl")
	text := jcsdl.New(schema.Default()).Encode(&models.Document{Filters: bobFilters()})
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		t.Fatal(err)
	}

	saved, err := ix.ImportFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID != docid.FromPath(path) || saved.Name != "bob-watch" {
		t.Errorf("saved = %+v", saved)
	}
	// importing again replaces rather than duplicates
	if _, err := ix.ImportFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountDocuments(ctx); n != 1 {
		t.Errorf("documents = %d, want 1", n)
	}

	if err := ix.ForgetFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDocument(ctx, saved.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("document should be gone, got %v", err)
	}
	if n, _ := idx.DocCount(); n != 0 {
		t.Errorf("index entries = %d, want 0", n)
	}
	// forgetting an unknown file is not an error
	if err := ix.ForgetFile(ctx, filepath.Join(dir, "never.jcsdl")); err != nil {
		t.Errorf("ForgetFile unknown: %v", err)
	}
}

func TestIndexer_ImportRejectsBadFile(t *testing.T) {
	ix, _, _ := newTestIndexer(t)
	path := filepath.Join(t.TempDir(), "junk.jcsdl")
	if err := os.WriteFile(path, []byte("not jcsdl"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.ImportFile(context.Background(), path); !errors.Is(err, jcsdl.ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}
	if _, err := ix.ImportFile(context.Background(), filepath.Dir(path)); err == nil {
		t.Error("expected error for a directory")
	}
}

func TestIndexer_DeleteAndReindex(t *testing.T) {
	ix, _, idx := newTestIndexer(t)
	ctx := context.Background()

	a, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: "a", Filters: bobFilters()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ix.SaveDocument(ctx, &models.DocumentInput{Name: "b", Filters: bobFilters()[1:]}); err != nil {
		t.Fatal(err)
	}

	if err := ix.DeleteDocument(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := ix.DeleteDocument(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}

	// drop the index entry behind the indexer's back, then rebuild
	docs, _ := idx.Search(ctx, "klout", 10, nil)
	for _, d := range docs {
		_ = idx.Delete(ctx, d.ID)
	}
	indexed, failed, err := ix.Reindex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if indexed != 1 || failed != 0 {
		t.Errorf("Reindex = %d indexed, %d failed", indexed, failed)
	}
	if n, _ := idx.DocCount(); n != 1 {
		t.Errorf("index entries = %d, want 1", n)
	}
}

// flakyIndex rejects writes while down is set.
type flakyIndex struct {
	index.DocumentIndex
	down bool
}

func (f *flakyIndex) Index(ctx context.Context, id string, entry *index.Entry) error {
	if f.down {
		return errors.New("index unavailable")
	}
	return f.DocumentIndex.Index(ctx, id, entry)
}

func TestIndexer_SaveKeepsStoredDocumentWhenIndexFails(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	mem, err := index.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = mem.Close() })
	flaky := &flakyIndex{DocumentIndex: mem, down: true}
	ix := NewIndexer(store, flaky, func() *jcsdl.Codec { return jcsdl.New(schema.Default()) })
	ctx := context.Background()

	id := docid.New()
	_, err = ix.SaveDocument(ctx, &models.DocumentInput{ID: id, Name: "bob", Filters: bobFilters()})
	if !errors.Is(err, ErrNotIndexed) {
		t.Fatalf("SaveDocument error = %v, want ErrNotIndexed", err)
	}
	if !strings.Contains(err.Error(), "index unavailable") {
		t.Errorf("error should carry the index failure: %v", err)
	}
	if _, err := store.GetDocument(ctx, id); err != nil {
		t.Fatalf("document should stay stored: %v", err)
	}
	if n, _ := mem.DocCount(); n != 0 {
		t.Errorf("index entries = %d, want 0", n)
	}

	flaky.down = false
	indexed, failed, err := ix.Reindex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if indexed != 1 || failed != 0 {
		t.Errorf("Reindex = %d indexed, %d failed", indexed, failed)
	}
	if n, _ := mem.DocCount(); n != 1 {
		t.Errorf("index entries after reindex = %d, want 1", n)
	}
}

func TestMasterHash(t *testing.T) {
	text := "// JCSDL_VERSION 1.0\r\n// JCSDL_MASTER abc123 OR\r\n\r\n// JCSDL_MASTER_END"
	if got := masterHash(text); got != "abc123" {
		t.Errorf("masterHash = %q", got)
	}
	if got := masterHash("garbage"); got != "" {
		t.Errorf("masterHash(garbage) = %q", got)
	}
}
