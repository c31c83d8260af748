// Package storage persists the index snapshot. Writes are staged to a
// sibling temp file and renamed into place, so readers always load a
// consistent snapshot and a crashed writer leaves the previous one
// intact.
package storage

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DavidAlphaFox/texsearch/internal/index"
)

// Snapshot is the whole persistent index state.
type Snapshot struct {
	LastUpdate int64
	Tree       *index.Tree
}

// Empty returns the initial snapshot: sequence zero, empty tree.
func Empty() *Snapshot {
	return &Snapshot{LastUpdate: 0, Tree: index.NewTree()}
}

// TempPath returns the atomic-write staging path for a snapshot path.
func TempPath(path string) string {
	return path + "_tmp"
}

// Save writes the snapshot to path atomically.
func (s *Snapshot) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp := TempPath(path)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("staging snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Tree == nil {
		s.Tree = index.NewTree()
	}
	return &s, nil
}
