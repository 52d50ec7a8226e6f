package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

type Database struct {
	DB *gorm.DB
}

// Option customizes the gorm configuration used by NewDatabase.
type Option func(*gorm.Config)

// WithLogLevel overrides the gorm log level (default: Warn).
func WithLogLevel(level logger.LogLevel) Option {
	return func(c *gorm.Config) {
		c.Logger = logger.Default.LogMode(level)
	}
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer. A single pooled connection queues concurrent
	// transactions in process, so racing writes commit in turn instead of
	// failing with "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// sqliteDSN turns on foreign key enforcement, so a book's holder must
// reference an existing user, and sets a busy timeout for writers from other
// processes. Options already present in dbPath are left alone.
func sqliteDSN(dbPath string) string {
	for _, opt := range []string{"_foreign_keys=1", "_busy_timeout=5000"} {
		key := opt[:strings.Index(opt, "=")]
		if strings.Contains(dbPath, key) {
			continue
		}
		if strings.Contains(dbPath, "?") {
			dbPath += "&" + opt
		} else {
			dbPath += "?" + opt
		}
	}
	return dbPath
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a single gorm transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (d *Database) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepository(tx))
	})
}

type (
	bookRepository = books.Repository
	userRepository = users.Repository
)

// txRepository binds the domain repositories to one transaction.
type txRepository struct {
	*bookRepository
	*userRepository
}

func newTxRepository(tx *gorm.DB) *txRepository {
	return &txRepository{
		bookRepository: books.NewRepository(tx),
		userRepository: users.NewRepository(tx),
	}
}

var _ store.Store = (*Database)(nil)
var _ store.Tx = (*txRepository)(nil)
