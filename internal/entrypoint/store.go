package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/sqlstore"
	"github.com/mrlokans/library/internal/exporters"
	"github.com/mrlokans/library/internal/store"
)

// OpenStore opens the configured entity store backend. The gorm handle is
// returned as well when that backend is selected, since the audit trail
// lives in the same database.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, *database.Database, error) {
	switch cfg.Database.Backend {
	case config.BackendSQLX:
		s, err := sqlstore.Open(ctx, cfg.Database.Dialect, cfg.DatabaseDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Dialect, err)
		}
		log.Printf("Entity store: sqlx/%s", cfg.Database.Dialect)
		return s, nil, nil
	case config.BackendGorm:
		db, err := database.NewDatabase(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Entity store: gorm/sqlite at %s", cfg.Database.Path)
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

// NewSnapshotExporter builds the file exporter described by cfg.Snapshot.
func NewSnapshotExporter(cfg *config.Config) (*exporters.FileSnapshotExporter, error) {
	format, err := exporters.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, err
	}
	return exporters.NewFileSnapshotExporter(cfg.Snapshot.Path, format), nil
}
