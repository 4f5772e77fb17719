// Package store provides the run ledger interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/regexgen/internal/model"
)

// RecordParams holds parameters for recording a completed run.
type RecordParams struct {
	Selector  string
	Count     int
	Formats   []string
	OutputDir string
	Layout    string
	Samples   int
	Bytes     int64
	Files     []model.RunFile
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Selector string
	Limit    int
}

// Store defines the run ledger interface.
type Store interface {
	// Record stores a run and the files it wrote. Returns the created run.
	Record(ctx context.Context, p RecordParams) (*model.Run, error)

	// Get retrieves a run with its files by ID or unique ID prefix.
	Get(ctx context.Context, id string) (*model.Run, error)

	// List lists runs, newest first, without their files.
	List(ctx context.Context, p ListParams) ([]model.Run, error)

	// Rm deletes a run and its file records.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
