package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/regexgen/internal/model"
)

// ErrNotFound is returned when no run matches an ID.
var ErrNotFound = errors.New("run not found")

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		selector    TEXT NOT NULL,
		count       INTEGER NOT NULL,
		formats     TEXT NOT NULL,
		output_dir  TEXT NOT NULL,
		layout      TEXT NOT NULL DEFAULT 'aggregated',
		samples     INTEGER NOT NULL DEFAULT 0,
		bytes       INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_selector ON runs(selector);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL,
		path    TEXT NOT NULL,
		format  TEXT NOT NULL,
		bytes   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, p RecordParams) (*model.Run, error) {
	if p.Layout == "" {
		p.Layout = model.LayoutAggregated
	}
	if !model.ValidLayouts[p.Layout] {
		return nil, fmt.Errorf("invalid layout %q", p.Layout)
	}

	now := time.Now().UTC()
	id := s.newID()
	formatsJSON, _ := json.Marshal(p.Formats)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, selector, count, formats, output_dir, layout, samples, bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Selector, p.Count, string(formatsJSON), p.OutputDir, p.Layout,
		p.Samples, p.Bytes, now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, f := range p.Files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, seq, path, format, bytes) VALUES (?, ?, ?, ?, ?)`,
			id, i, f.Path, f.Format, f.Bytes)
		if err != nil {
			return nil, fmt.Errorf("insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Run{
		ID:        id,
		Selector:  p.Selector,
		Count:     p.Count,
		Formats:   p.Formats,
		OutputDir: p.OutputDir,
		Layout:    p.Layout,
		Samples:   p.Samples,
		Bytes:     p.Bytes,
		CreatedAt: now,
		Files:     p.Files,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Run, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, selector, count, formats, output_dir, layout, samples, bytes, created_at
		 FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id LIMIT 2`, id, id)
	if err != nil {
		return nil, err
	}
	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	rows.Close()

	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 2:
		return nil, fmt.Errorf("ambiguous run id prefix %q", id)
	}
	run := runs[0]

	files, err := s.db.QueryContext(ctx,
		`SELECT path, format, bytes FROM run_files WHERE run_id = ? ORDER BY seq`, run.ID)
	if err != nil {
		return nil, err
	}
	defer files.Close()
	for files.Next() {
		var f model.RunFile
		if err := files.Scan(&f.Path, &f.Format, &f.Bytes); err != nil {
			return nil, err
		}
		run.Files = append(run.Files, f)
	}
	return &run, files.Err()
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, selector, count, formats, output_dir, layout, samples, bytes, created_at FROM runs`
	var args []interface{}
	if p.Selector != "" {
		query += ` WHERE selector = ?`
		args = append(args, p.Selector)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_files WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var formatsJSON, createdAt string

	err := row.Scan(
		&r.ID, &r.Selector, &r.Count, &formatsJSON, &r.OutputDir,
		&r.Layout, &r.Samples, &r.Bytes, &createdAt,
	)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	json.Unmarshal([]byte(formatsJSON), &r.Formats)
	return r, nil
}
