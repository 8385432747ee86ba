package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVFile replaces a CSV file on disk in one step. Rows are written to a
// temporary file next to the destination and renamed over it, so readers
// polling the file never see a partial write.
type CSVFile struct {
	path string
	perm os.FileMode
}

// NewCSVFile creates the destination directory if needed.
func NewCSVFile(path string) (*CSVFile, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &CSVFile{
		path: path,
		perm: 0644,
	}, nil
}

func (f *CSVFile) Path() string {
	return f.path
}

// Replace writes header and rows to the destination, replacing any previous
// contents. On error the destination is left untouched.
func (f *CSVFile) Replace(header []string, rows [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	// WriteAll flushes
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), f.perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	return nil
}
