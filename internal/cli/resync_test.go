package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
)

func TestResyncCommand_Run(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	outPath := filepath.Join(dir, "out", "books.csv")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Book{Title: "Dune", Author: "Herbert"}).Error)
	require.NoError(t, db.Close())

	cmd := NewResyncCommand(config.NewConfig())
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-out", outPath, "-backend", "gorm"}))
	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "id,title,author,holder_id\n1,Dune,Herbert,\n", string(data))
}

func TestResyncCommand_ParseFlags(t *testing.T) {
	cmd := NewResyncCommand(config.NewConfig())
	require.NoError(t, cmd.ParseFlags([]string{"-format", "json"}))
	assert.Equal(t, "json", cmd.Format)
	assert.Equal(t, config.DefaultDatabasePath, cmd.DatabasePath)
	assert.Equal(t, config.DefaultSnapshotPath, cmd.OutputPath)

	cmd = NewResyncCommand(config.NewConfig())
	assert.Error(t, cmd.ParseFlags([]string{"-out", ""}))
}

func TestResyncCommand_RejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	cmd := NewResyncCommand(config.NewConfig())
	require.NoError(t, cmd.ParseFlags([]string{
		"-db", filepath.Join(dir, "library.db"),
		"-out", filepath.Join(dir, "books.xml"),
		"-format", "xml",
		"-backend", "gorm",
	}))
	assert.Error(t, cmd.Run())
}
