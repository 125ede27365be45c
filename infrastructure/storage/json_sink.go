package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

var _ ports.RecordSink = (*JSONFileSink)(nil)

// JSONFileSink writes the aggregated records as one indented JSON array.
// The file is replaced atomically so readers never observe a partial write.
type JSONFileSink struct {
	path string
	perm os.FileMode
}

// NewJSONFileSink creates a sink that writes to path, creating parent
// directories as needed.
func NewJSONFileSink(path string) *JSONFileSink {
	return &JSONFileSink{path: filepath.Clean(path), perm: 0o644}
}

// Write implements ports.RecordSink.
func (s *JSONFileSink) Write(ctx context.Context, records []domain.NormalizedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.NormalizedRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return ports.NewOutputError(s.path, fmt.Errorf("marshal records: %w", err))
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return ports.NewOutputError(s.path, fmt.Errorf("create output directory: %w", err))
	}
	if err := atomicWriteFile(s.path, data, s.perm); err != nil {
		return ports.NewOutputError(s.path, err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Keep tmp in same directory for atomic rename.
	tmp, err := os.CreateTemp(dir, tmpPattern(filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanupTmp := true

	defer func() {
		_ = tmp.Close()
		if cleanupTmp {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	cleanupTmp = false

	// Windows cannot fsync a directory.
	if runtime.GOOS != "windows" {
		if err := fsyncDir(dir); err != nil {
			return fmt.Errorf("fsync output directory: %w", err)
		}
	}
	return nil
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func tmpPattern(base string) string {
	// CreateTemp requires a pattern ending with *.
	return fmt.Sprintf(".%s.*", base)
}
