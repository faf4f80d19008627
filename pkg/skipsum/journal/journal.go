package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jamesainslie/skipsum/pkg/skipsum/logging"
)

var logger = logging.Get("journal")

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("journal entry not found")

// Journal manages run history in a directory.
type Journal struct {
	dir string
	mu  sync.Mutex
}

// New creates a Journal rooted at dir.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory cannot be empty")
	}
	return &Journal{dir: dir}, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// EnsureDir creates the journal directory if it does not exist.
func (j *Journal) EnsureDir() error {
	return os.MkdirAll(j.dir, 0o755)
}

// Log persists rec as a new entry and returns it.
func (j *Journal) Log(rec Record) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var totalBytes int64
	for _, f := range rec.Files {
		totalBytes += f.Size
	}

	files := rec.Files
	if files == nil {
		files = []FileRecord{}
	}

	entry := &Entry{
		ID:         generateID(rec.Operation),
		Timestamp:  time.Now().UTC(),
		Operation:  rec.Operation,
		Marker:     rec.Marker,
		AutoDetect: rec.AutoDetect,
		Sources:    rec.Sources,
		Files:      files,
		Summary: Summary{
			TotalFiles: len(rec.Files),
			Failed:     rec.Failed,
			TotalBytes: totalBytes,
			ExitCode:   rec.ExitCode,
		},
	}

	if err := j.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}

	logger.Debug("journal entry written", "id", entry.ID, "files", entry.Summary.TotalFiles)
	return entry, nil
}

// writeEntry writes an entry atomically using a temp file and rename.
func (j *Journal) writeEntry(entry *Entry) error {
	filePath := j.entryPath(entry.ID)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (j *Journal) entryPath(id string) string {
	return filepath.Join(j.dir, id+".json")
}

// List returns entries sorted newest first. A limit of 0 or less returns all.
// Files that cannot be parsed are skipped.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := readEntryFile(filepath.Join(j.dir, f.Name()))
		if err != nil {
			logger.Debug("skipping unreadable journal file", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// Get retrieves an entry by ID.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entry, err := readEntryFile(j.entryPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

func readEntryFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the journal directory
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Cleanup removes entries whose files are older than retentionDays and
// returns how many were removed.
func (j *Journal) Cleanup(retentionDays int) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read journal directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(j.dir, f.Name())); err != nil {
				logger.Warn("failed to remove journal entry", "file", f.Name(), "error", err)
				continue
			}
			removed++
		}
	}

	return removed, nil
}

// generateID creates an ID like "check-2024-06-15T10-30-00-1b4e28ba".
func generateID(op OperationType) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", op, ts, suffix)
}
