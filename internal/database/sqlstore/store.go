package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/mrlokans/library/internal/store"
)

const (
	DialectSQLite3  = "sqlite3"
	DialectPostgres = "postgres"
)

// Store implements store.Store on a sqlx connection pool.
type Store struct {
	db          *sqlx.DB
	dialect     goqu.DialectWrapper
	dialectName string
}

// Open connects, verifies the connection and creates missing tables.
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	var schema []string
	switch dialect {
	case DialectSQLite3:
		dsn = sqliteDSN(dsn)
		schema = sqliteSchema
	case DialectPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sqlx.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite3 {
		// sqlite allows a single writer; one connection avoids SQLITE_BUSY between transactions
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{
		db:          db,
		dialect:     goqu.Dialect(dialect),
		dialectName: dialect,
	}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=1&_busy_timeout=5000"
	}
	return path + "?_foreign_keys=1&_busy_timeout=5000"
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Transaction runs fn inside one database transaction, committing on nil and
// rolling back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txRepository{ctx: ctx, tx: sqlTx, dialect: s.dialect, returning: s.dialectName == DialectPostgres}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
