// Package model defines the core generation data types.
package model

import "time"

// Sample is one generated string tagged with the pattern that produced it.
type Sample struct {
	Pattern string `json:"pattern"`
	Index   int    `json:"index"`
	Value   string `json:"value"`
}

// Run represents a recorded generation request.
type Run struct {
	ID        string    `json:"id"`
	Selector  string    `json:"selector"`
	Count     int       `json:"count"`
	Formats   []string  `json:"formats"`
	OutputDir string    `json:"output_dir"`
	Layout    string    `json:"layout"`
	Samples   int       `json:"samples"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
	Files     []RunFile `json:"files,omitempty"`
}

// RunFile is a single output file written by a run.
type RunFile struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int64  `json:"bytes"`
}

// Output layouts.
const (
	LayoutAggregated = "aggregated"
	LayoutPerSample  = "per-sample"
)

// ValidLayouts are the allowed output layouts.
var ValidLayouts = map[string]bool{
	LayoutAggregated: true,
	LayoutPerSample:  true,
}
