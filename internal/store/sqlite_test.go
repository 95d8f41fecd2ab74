package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const startNow = "1. Start now.\n- Don't wait.\nok\n"

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b, err := s.Put(ctx, PutParams{Name: "monday", Text: startNow})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if b.Version != 1 {
		t.Errorf("expected version 1, got %d", b.Version)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
	if b.QuoteCount != 2 {
		t.Errorf("expected 2 quotes, got %d", b.QuoteCount)
	}

	got, err := s.Get(ctx, GetParams{Name: "monday"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Text != startNow {
		t.Errorf("text not preserved: %q", got[0].Text)
	}
	want := []string{"Start now.", "Don't wait."}
	if len(got[0].Quotes) != 2 || got[0].Quotes[0] != want[0] || got[0].Quotes[1] != want[1] {
		t.Errorf("expected quotes %v, got %v", want, got[0].Quotes)
	}
	if got[0].QuoteCount != 2 {
		t.Errorf("expected quote_count 2, got %d", got[0].QuoteCount)
	}
}

func TestPutRequiresName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Put(context.Background(), PutParams{Name: "  ", Text: "x"}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestPutEmptyText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Put(ctx, PutParams{Name: "empty", Text: ""}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, GetParams{Name: "empty"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0].Quotes == nil || len(got[0].Quotes) != 0 {
		t.Errorf("expected empty non-nil quotes, got %#v", got[0].Quotes)
	}
}

func TestVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "k", Text: "first draft"})
	b2, _ := s.Put(ctx, PutParams{Name: "k", Text: "second draft"})

	if b2.Version != 2 {
		t.Errorf("expected version 2, got %d", b2.Version)
	}
	if b2.Supersedes == "" {
		t.Error("expected supersedes to be set")
	}

	got, _ := s.Get(ctx, GetParams{Name: "k"})
	if got[0].Text != "second draft" {
		t.Errorf("expected 'second draft', got %q", got[0].Text)
	}

	hist, _ := s.Get(ctx, GetParams{Name: "k", History: true})
	if len(hist) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(hist))
	}

	v1, _ := s.Get(ctx, GetParams{Name: "k", Version: 1})
	if v1[0].Text != "first draft" {
		t.Errorf("expected 'first draft', got %q", v1[0].Text)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), GetParams{Name: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "a", Text: "alpha quote"})
	s.Put(ctx, PutParams{Name: "b", Text: "beta quote"})
	s.Put(ctx, PutParams{Name: "b", Text: "beta quote again"})

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 2 {
		t.Fatalf("expected 2 (latest only), got %d", len(all))
	}
	for _, b := range all {
		if b.Name == "b" && b.Text != "beta quote again" {
			t.Errorf("expected latest version of b, got %q", b.Text)
		}
	}

	limited, _ := s.List(ctx, ListParams{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1 with limit, got %d", len(limited))
	}
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "k", Text: "data data"})
	if err := s.Rm(ctx, RmParams{Name: "k"}); err != nil {
		t.Fatalf("rm: %v", err)
	}

	if _, err := s.Get(ctx, GetParams{Name: "k"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after soft delete, got %v", err)
	}
	if err := s.Rm(ctx, RmParams{Name: "k"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second rm, got %v", err)
	}
}

func TestSoftDeleteLatestOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "k", Text: "v1 text"})
	s.Put(ctx, PutParams{Name: "k", Text: "v2 text"})
	s.Rm(ctx, RmParams{Name: "k"})

	got, err := s.Get(ctx, GetParams{Name: "k"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0].Text != "v1 text" {
		t.Errorf("expected previous version, got %q", got[0].Text)
	}
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "k", Text: "data data"})
	if err := s.Rm(ctx, RmParams{Name: "k", Hard: true}); err != nil {
		t.Fatalf("rm hard: %v", err)
	}

	if _, err := s.Get(ctx, GetParams{Name: "k"}); err == nil {
		t.Error("expected error after hard delete")
	}
	st, _ := s.Stats(ctx, "")
	if st.TotalQuotes != 0 || st.TotalVersions != 0 {
		t.Errorf("expected rows removed, got %+v", st)
	}
}

func TestDeleteAllVersions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "k", Text: "v1 text"})
	s.Put(ctx, PutParams{Name: "k", Text: "v2 text"})

	s.Rm(ctx, RmParams{Name: "k", AllVersions: true})

	if _, err := s.Get(ctx, GetParams{Name: "k", History: true}); err == nil {
		t.Error("expected error after deleting all versions")
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Name: "a", Text: "xxxx", Tags: []string{"monday", "gym"}})
	s.Put(ctx, PutParams{Name: "b", Text: "yyyy", Tags: []string{"monday"}})
	s.Put(ctx, PutParams{Name: "c", Text: "zzzz"})

	list, _ := s.List(ctx, ListParams{Tags: []string{"monday"}})
	if len(list) != 2 {
		t.Errorf("expected 2 with 'monday' tag, got %d", len(list))
	}

	list, _ = s.List(ctx, ListParams{Tags: []string{"gym"}})
	if len(list) != 1 {
		t.Errorf("expected 1 with 'gym' tag, got %d", len(list))
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	src.Put(ctx, PutParams{Name: "a", Text: startNow, Tags: []string{"x"}})
	src.Put(ctx, PutParams{Name: "b", Text: "Keep going."})

	batches, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(batches) != 2 || len(batches[0].Quotes) != 2 {
		t.Fatalf("unexpected export %+v", batches)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, batches)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	got, err := dst.Get(ctx, GetParams{Name: "a"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0].QuoteCount != 2 || len(got[0].Tags) != 1 {
		t.Errorf("unexpected imported batch %+v", got[0])
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Put(ctx, PutParams{Name: "a", Text: startNow})
	s.Put(ctx, PutParams{Name: "a", Text: "Keep going."})
	s.Put(ctx, PutParams{Name: "b", Text: "Stay hungry."})

	st, err := s.Stats(ctx, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalVersions != 3 || st.ActiveBatches != 2 || st.TotalQuotes != 4 {
		t.Errorf("unexpected stats %+v", st)
	}
}
