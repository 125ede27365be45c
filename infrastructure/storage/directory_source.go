// Package storage provides filesystem implementations of the record source
// and sink ports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/one-acre-fund/application-score-card/internal/ports"
)

var _ ports.RecordSource = (*DirectorySource)(nil)

// DirectorySource reads every *.json file directly inside a directory.
// Subdirectories and other files are ignored. Documents are returned in
// lexical file name order.
type DirectorySource struct {
	dir string
}

// NewDirectorySource creates a source for dir.
func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{dir: filepath.Clean(dir)}
}

// Load reads the snapshot. A missing or non-directory path is an error for
// the whole source; a file that cannot be read is reported on its own
// document so the rest of the batch can proceed.
func (s *DirectorySource) Load(ctx context.Context) ([]ports.Document, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.NewInputError(s.dir, "stat", ports.ErrSourceNotFound)
		}
		return nil, ports.NewInputError(s.dir, "stat", err)
	}
	if !info.IsDir() {
		return nil, ports.NewInputError(s.dir, "stat", fmt.Errorf("%w: not a directory", ports.ErrSourceNotFound))
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, ports.NewInputError(s.dir, "list", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	docs := make([]ports.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			docs = append(docs, ports.Document{Source: path, Err: errors.Join(ports.ErrUnreadable, err)})
			continue
		}
		docs = append(docs, ports.Document{Source: path, Data: data})
	}
	return docs, nil
}
