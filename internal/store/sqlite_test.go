package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/regexgen/internal/model"
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

func sampleParams(selector string) RecordParams {
	return RecordParams{
		Selector:  selector,
		Count:     2,
		Formats:   []string{"JSON", "XML"},
		OutputDir: "output",
		Layout:    model.LayoutAggregated,
		Samples:   2,
		Bytes:     120,
		Files: []model.RunFile{
			{Path: "output/" + selector + "/" + selector + ".json", Format: "JSON", Bytes: 70},
			{Path: "output/" + selector + "/" + selector + ".xml", Format: "XML", Bytes: 50},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, err := s.Record(ctx, sampleParams("digit"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if run.ID == "" {
		t.Error("expected non-empty ID")
	}

	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Selector != "digit" {
		t.Errorf("expected selector 'digit', got %q", got.Selector)
	}
	if len(got.Formats) != 2 || got.Formats[1] != "XML" {
		t.Errorf("expected formats [JSON XML], got %v", got.Formats)
	}
	if len(got.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got.Files))
	}
	if got.Files[0].Format != "JSON" || got.Files[0].Bytes != 70 {
		t.Errorf("unexpected first file %+v", got.Files[0])
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, _ := s.Record(ctx, sampleParams("digit"))

	got, err := s.Get(ctx, run.ID[:20])
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("expected %s, got %s", run.ID, got.ID)
	}

	if _, err := s.Get(ctx, "ZZZZZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestGetPrefixIsLiteral(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, _ := s.Record(ctx, sampleParams("digit"))

	for _, id := range []string{"%", "_", run.ID[:3] + "%", "_" + run.ID[1:]} {
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for %q, got %v", id, err)
		}
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Record(ctx, sampleParams("digit"))
	s.Record(ctx, sampleParams("email"))
	last, _ := s.Record(ctx, sampleParams("digit"))

	list, err := s.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(list))
	}
	if list[0].ID != last.ID {
		t.Errorf("expected newest run first, got %s", list[0].ID)
	}
	if len(list[0].Files) != 0 {
		t.Error("expected list to omit files")
	}

	list, _ = s.List(ctx, ListParams{Selector: "digit"})
	if len(list) != 2 {
		t.Errorf("expected 2 digit runs, got %d", len(list))
	}

	list, _ = s.List(ctx, ListParams{Limit: 1})
	if len(list) != 1 {
		t.Errorf("expected limit 1, got %d", len(list))
	}
}

func TestRecordInvalidLayout(t *testing.T) {
	s := newTestStore(t)
	p := sampleParams("digit")
	p.Layout = "sideways"
	if _, err := s.Record(context.Background(), p); err == nil {
		t.Error("expected error for invalid layout")
	}
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, _ := s.Record(ctx, sampleParams("digit"))
	if err := s.Rm(ctx, run.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.Get(ctx, run.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after rm, got %v", err)
	}
	if err := s.Rm(ctx, run.ID); err == nil {
		t.Error("expected error removing a missing run")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.Record(ctx, sampleParams("digit"))
	s.Record(ctx, sampleParams("digit"))
	s.Record(ctx, sampleParams("email"))

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalRuns != 3 {
		t.Errorf("expected 3 runs, got %d", st.TotalRuns)
	}
	if st.TotalFiles != 6 {
		t.Errorf("expected 6 files, got %d", st.TotalFiles)
	}
	if st.TotalBytes != 360 {
		t.Errorf("expected 360 bytes, got %d", st.TotalBytes)
	}
	if len(st.Selectors) != 2 || st.Selectors[0].Selector != "digit" || st.Selectors[0].Runs != 2 {
		t.Errorf("unexpected selector stats %+v", st.Selectors)
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
