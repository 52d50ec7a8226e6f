package exporters

import "github.com/mrlokans/library/internal/entities"

// SnapshotExporter replaces the external snapshot with the given book
// collection. Implementations must never expose a partially written snapshot.
type SnapshotExporter interface {
	Export(books []entities.Book) (ExportResult, error)
}

type ExportResult struct {
	BooksExported int    `json:"books_exported"`
	Path          string `json:"path"`
	Format        Format `json:"format"`
	BytesWritten  int64  `json:"bytes_written"`
}
