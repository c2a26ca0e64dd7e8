// internal/sequence/store.go

package sequence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// FileStore writes the sequence list as a JSON array at Path.
// The file is replaced atomically: readers see the old or the new list,
// never a partial one.
type FileStore struct {
	Path   string
	Logger *slog.Logger
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{Path: path, Logger: logger}
}

// Persist overwrites the file with seqs, creating parent directories.
func (s *FileStore) Persist(seqs []Sequence) error {
	if s.Path == "" {
		return fmt.Errorf("sequence: store path required")
	}
	if seqs == nil {
		seqs = []Sequence{}
	}

	data, err := json.MarshalIndent(seqs, "", "  ")
	if err != nil {
		return fmt.Errorf("sequence: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("sequence: create directory: %w", err)
	}

	if err := writeAtomic(s.Path, data); err != nil {
		return err
	}

	sum := blake3.Sum256(data)
	s.Logger.Info("saved sequences",
		"count", len(seqs),
		"path", s.Path,
		"digest", hex.EncodeToString(sum[:8]),
	)
	return nil
}

// Load reads a file written by Persist.
func Load(path string) ([]Sequence, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("sequence: read: %w", err)
	}

	var seqs []Sequence
	if err := json.Unmarshal(data, &seqs); err != nil {
		return nil, fmt.Errorf("sequence: parse %s: %w", path, err)
	}
	return seqs, nil
}

// writeAtomic writes to a temporary sibling, syncs it and renames it
// over path. The temporary file is removed on any failure.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("sequence: create temporary file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sequence: write temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sequence: sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sequence: close temporary file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sequence: rename into place: %w", err)
	}
	return nil
}
