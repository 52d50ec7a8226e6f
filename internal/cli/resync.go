package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entrypoint"
)

// ResyncCommand rewrites the snapshot from the entity store without
// starting the server. Use it after restoring a database or when the
// snapshot file was lost.
type ResyncCommand struct {
	DatabasePath string
	Backend      string
	Dialect      string
	DSN          string
	OutputPath   string
	Format       string
	Timeout      time.Duration

	cfg *config.Config
}

func NewResyncCommand(cfg *config.Config) *ResyncCommand {
	return &ResyncCommand{cfg: cfg}
}

func (cmd *ResyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("resync", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the library database file")
	fs.StringVar(&cmd.Backend, "backend", cmd.cfg.Database.Backend, "Entity store backend: gorm or sqlx")
	fs.StringVar(&cmd.Dialect, "dialect", cmd.cfg.Database.Dialect, "SQL dialect for the sqlx backend: sqlite3 or postgres")
	fs.StringVar(&cmd.DSN, "dsn", cmd.cfg.Database.DSN, "Postgres connection string for the sqlx backend")
	fs.StringVar(&cmd.OutputPath, "out", cmd.cfg.Snapshot.Path, "Snapshot file to write")
	fs.StringVar(&cmd.Format, "format", cmd.cfg.Snapshot.Format, "Snapshot format: csv or json")
	fs.DurationVar(&cmd.Timeout, "timeout", time.Minute, "Maximum time for the export")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s resync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rewrite the book snapshot from the current database state.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s resync\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s resync -out ./exports/books.json -format json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.OutputPath == "" {
		fs.Usage()
		return fmt.Errorf("output path is required")
	}
	return nil
}

func (cmd *ResyncCommand) Run() error {
	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath
	cfg.Database.Backend = cmd.Backend
	cfg.Database.Dialect = cmd.Dialect
	cfg.Database.DSN = cmd.DSN
	cfg.Snapshot.Path = cmd.OutputPath
	cfg.Snapshot.Format = cmd.Format
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	entityStore, _, err := entrypoint.OpenStore(ctx, &cfg)
	if err != nil {
		return err
	}
	defer entityStore.Close()

	exporter, err := entrypoint.NewSnapshotExporter(&cfg)
	if err != nil {
		return err
	}

	syncer := catalog.NewSnapshotSync(entityStore, exporter)
	if err := syncer.Resync(ctx); err != nil {
		return err
	}

	status := syncer.Status()
	fmt.Printf("Snapshot written: %d books to %s (run %s)\n", status.BooksExported, exporter.Path, status.LastRunID)
	return nil
}
