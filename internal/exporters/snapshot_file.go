package exporters

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/library/internal/entities"
)

// FileSnapshotExporter writes the book collection to a single flat file.
// Every export builds a temp file next to the target and renames it into
// place, so readers see either the previous snapshot or the new one.
type FileSnapshotExporter struct {
	Path   string
	Format Format

	now func() time.Time
}

func NewFileSnapshotExporter(path string, format Format) *FileSnapshotExporter {
	return &FileSnapshotExporter{
		Path:   path,
		Format: format,
		now:    time.Now,
	}
}

func (exporter *FileSnapshotExporter) Export(books []entities.Book) (ExportResult, error) {
	result := ExportResult{Path: exporter.Path, Format: exporter.Format}

	encode, err := exporter.encoder(books)
	if err != nil {
		return result, err
	}

	written, err := writeFileAtomic(exporter.Path, encode)
	if err != nil {
		return result, fmt.Errorf("failed to write snapshot %s: %w", exporter.Path, err)
	}

	result.BooksExported = len(books)
	result.BytesWritten = written
	log.Printf("Snapshot exported: %d books to %s (%d bytes)", len(books), exporter.Path, written)
	return result, nil
}

func (exporter *FileSnapshotExporter) encoder(books []entities.Book) (func(io.Writer) error, error) {
	switch exporter.Format {
	case FormatCSV, "":
		return func(w io.Writer) error { return writeCSV(w, books) }, nil
	case FormatJSON:
		now := exporter.now()
		return func(w io.Writer) error { return writeJSON(w, books, now) }, nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", exporter.Format)
	}
}

// writeFileAtomic writes through a temp file in the target directory, syncs
// it, then renames it over path. The temp file is removed on any failure.
func writeFileAtomic(path string, write func(io.Writer) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	counter := &countingWriter{w: tmp}
	if err := write(counter); err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return 0, fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("failed to replace snapshot: %w", err)
	}
	committed = true
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var _ SnapshotExporter = (*FileSnapshotExporter)(nil)
