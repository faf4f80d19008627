// Package journal keeps a history of skipsum runs as JSON files, one per run.
package journal

import "time"

// OperationType represents the type of run.
type OperationType string

const (
	// OpGenerate represents a manifest generation run.
	OpGenerate OperationType = "generate"
	// OpCheck represents a manifest verification run.
	OpCheck OperationType = "check"
)

// Entry represents a single journal entry.
type Entry struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Operation  OperationType `json:"operation"`
	Marker     string        `json:"marker,omitempty"`
	AutoDetect bool          `json:"auto_detect,omitempty"`
	Sources    []string      `json:"sources"`
	Files      []FileRecord  `json:"files"`
	Summary    Summary       `json:"summary"`
}

// FileRecord represents one hashed or verified file.
type FileRecord struct {
	Path     string `json:"path"`
	Manifest string `json:"manifest,omitempty"` // Set for check runs
	Digest   string `json:"digest,omitempty"`
	Status   string `json:"status"`
	Size     int64  `json:"size"`
}

// Summary contains the run totals.
type Summary struct {
	TotalFiles int   `json:"total_files"`
	Failed     int   `json:"failed"`
	TotalBytes int64 `json:"total_bytes"`
	ExitCode   int   `json:"exit_code"`
}

// Record is what a caller hands to Log.
type Record struct {
	Operation  OperationType
	Marker     string
	AutoDetect bool
	Sources    []string
	Files      []FileRecord
	Failed     int
	ExitCode   int
}
