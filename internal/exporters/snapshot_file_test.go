package exporters

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
)

func uintPtr(v uint) *uint { return &v }

func sampleBooks() []entities.Book {
	return []entities.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", HolderID: uintPtr(3)},
		{ID: 2, Title: "Emma, a novel", Author: "Jane Austen"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFileSnapshotExporter_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	exporter := NewFileSnapshotExporter(path, FormatCSV)

	result, err := exporter.Export(sampleBooks())
	require.NoError(t, err)
	assert.Equal(t, 2, result.BooksExported)
	assert.Equal(t, path, result.Path)
	assert.Positive(t, result.BytesWritten)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "title", "author", "holder_id"}, records[0])
	assert.Equal(t, []string{"1", "Dune", "Frank Herbert", "3"}, records[1])
	assert.Equal(t, []string{"2", "Emma, a novel", "Jane Austen", ""}, records[2])
}

func TestFileSnapshotExporter_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	exporter := NewFileSnapshotExporter(path, FormatJSON)
	exporter.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	_, err := exporter.Export(sampleBooks())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		GeneratedAt string `json:"generated_at"`
		Count       int    `json:"count"`
		Books       []struct {
			ID       uint   `json:"id"`
			Title    string `json:"title"`
			HolderID *uint  `json:"holder_id"`
		} `json:"books"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2024-03-01T12:00:00Z", doc.GeneratedAt)
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Books, 2)
	require.NotNil(t, doc.Books[0].HolderID)
	assert.Equal(t, uint(3), *doc.Books[0].HolderID)
	assert.Nil(t, doc.Books[1].HolderID)
}

func TestFileSnapshotExporter_OverwritesInFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	exporter := NewFileSnapshotExporter(path, FormatCSV)

	_, err := exporter.Export(sampleBooks())
	require.NoError(t, err)

	_, err = exporter.Export([]entities.Book{})
	require.NoError(t, err)

	records := readCSV(t, path)
	assert.Len(t, records, 1, "only the header should remain")
}

func TestFileSnapshotExporter_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "books.csv")
	exporter := NewFileSnapshotExporter(path, FormatCSV)

	_, err := exporter.Export(sampleBooks())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFileSnapshotExporter_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileSnapshotExporter(filepath.Join(dir, "books.csv"), FormatCSV)

	for i := 0; i < 3; i++ {
		_, err := exporter.Export(sampleBooks())
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "books.csv", entries[0].Name())
}

func TestFileSnapshotExporter_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.xml")
	exporter := NewFileSnapshotExporter(path, Format("xml"))

	_, err := exporter.Export(sampleBooks())
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestWriteFileAtomic_FailureKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	_, err := writeFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("half a snap"))
		return errors.New("encoder blew up")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}
