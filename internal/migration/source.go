package migration

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirSource reads migration sources from a single directory on disk.
// File names are the migration identities, so they should carry a sortable
// prefix; apply order is plain lexicographic order of the names.
type DirSource struct {
	dir string
}

// NewDirSource returns a SourceStore over the given directory. The directory
// does not need to exist; a missing directory yields zero sources, which
// makes a run against a not-yet-provisioned deployment a no-op.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns one Source per file with a .sql extension (case-insensitive).
// Subdirectories and other files are ignored.
func (s *DirSource) List() ([]Source, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, NewSourceReadError(s.dir, "list", err)
	}

	var sources []Source
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".sql") {
			continue
		}
		sources = append(sources, Source{
			Name: name,
			Path: filepath.Join(s.dir, name),
		})
	}
	return sources, nil
}

// Read returns the raw SQL text of one source
func (s *DirSource) Read(src Source) (string, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return "", NewSourceReadError(src.Path, "read", err)
	}
	return string(data), nil
}
