package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// Default file location.
const (
	DefaultDir      = "./data"
	DefaultFileName = "database.json"
)

var (
	// ErrNotFound means no snapshot file exists yet.
	ErrNotFound = errors.New("snapshot: not found")

	// ErrCorrupt means the file exists but could not be decoded.
	ErrCorrupt = errors.New("snapshot: corrupt file")
)

// Config configures the snapshot file.
type Config struct {
	Dir      string
	FileName string
}

// DefaultConfig returns the default file location under dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:      dir,
		FileName: DefaultFileName,
	}
}

// Info describes a written or loaded snapshot.
type Info struct {
	Path      string         `json:"path"`
	Size      int64          `json:"size"`
	Timestamp time.Time      `json:"timestamp"`
	Counts    map[string]int `json:"counts"`
}

// File is the durable snapshot file.
type File struct {
	dir  string
	path string
}

// NewFile creates a handle for the snapshot file. The directory is not
// created until the first Write.
func NewFile(cfg Config) (*File, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	return &File{
		dir:  cfg.Dir,
		path: filepath.Join(cfg.Dir, cfg.FileName),
	}, nil
}

// Path returns the snapshot file path.
func (f *File) Path() string {
	return f.path
}

// Write replaces the snapshot file with rec, creating the directory if
// it does not exist.
func (f *File) Write(rec *Record) (*Info, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}

	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("snapshot: write: %w", err)
	}

	return &Info{
		Path:      f.path,
		Size:      int64(len(data)),
		Timestamp: rec.Timestamp,
		Counts:    rec.Counts(),
	}, nil
}

// Load reads and decodes the snapshot file. A missing file yields
// ErrNotFound; an undecodable one yields an error wrapping ErrCorrupt.
func (f *File) Load() (*Record, *Info, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("snapshot: read: %w", err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	return rec, &Info{
		Path:      f.path,
		Size:      int64(len(data)),
		Timestamp: rec.Timestamp,
		Counts:    rec.Counts(),
	}, nil
}

// Decode parses snapshot JSON. Missing tables decode as empty.
func Decode(data []byte) (*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &rec, nil
}

// Quarantine renames an unreadable snapshot out of the way so the next
// write does not destroy it. It returns the new path.
func (f *File) Quarantine(now time.Time) (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%s", f.path, now.UTC().Format("20060102150405"))
	if err := os.Rename(f.path, dst); err != nil {
		return "", fmt.Errorf("snapshot: quarantine: %w", err)
	}
	return dst, nil
}
