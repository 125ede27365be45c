package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/one-acre-fund/application-score-card/internal/ports"
)

var _ ports.RecordSource = (*FileSource)(nil)

// FileSource reads an explicit list of files in the order given.
type FileSource struct {
	paths []string
}

// NewFileSource creates a source for paths.
func NewFileSource(paths ...string) *FileSource {
	cleaned := make([]string, len(paths))
	for i, p := range paths {
		cleaned[i] = filepath.Clean(p)
	}
	return &FileSource{paths: cleaned}
}

// Load reads every listed file. Missing or unreadable files are reported
// on their own document rather than failing the source.
func (s *FileSource) Load(ctx context.Context) ([]ports.Document, error) {
	docs := make([]ports.Document, 0, len(s.paths))
	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			docs = append(docs, ports.Document{Source: path, Err: errors.Join(ports.ErrSourceNotFound, err)})
		case err != nil:
			docs = append(docs, ports.Document{Source: path, Err: errors.Join(ports.ErrUnreadable, err)})
		default:
			docs = append(docs, ports.Document{Source: path, Data: data})
		}
	}
	return docs, nil
}
