package store

import (
	"context"
	"os"
)

// Stats holds ledger statistics.
type Stats struct {
	DBPath       string          `json:"db_path"`
	DBSizeBytes  int64           `json:"db_size_bytes"`
	TotalRuns    int             `json:"total_runs"`
	TotalSamples int64           `json:"total_samples"`
	TotalFiles   int             `json:"total_files"`
	TotalBytes   int64           `json:"total_bytes"`
	Selectors    []SelectorStats `json:"selectors"`
}

// SelectorStats holds per-selector counts.
type SelectorStats struct {
	Selector string `json:"selector"`
	Runs     int    `json:"runs"`
	Samples  int64  `json:"samples"`
}

// Stats returns ledger statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(samples), 0), COALESCE(SUM(bytes), 0) FROM runs`).
		Scan(&st.TotalRuns, &st.TotalSamples, &st.TotalBytes)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_files`).Scan(&st.TotalFiles)

	rows, err := s.db.QueryContext(ctx, `
		SELECT selector, COUNT(*) as cnt, COALESCE(SUM(samples), 0)
		FROM runs
		GROUP BY selector ORDER BY cnt DESC, selector`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var sel SelectorStats
		rows.Scan(&sel.Selector, &sel.Runs, &sel.Samples)
		st.Selectors = append(st.Selectors, sel)
	}

	return st, nil
}
