package config

const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./library.db"

	// DefaultSnapshotPath is where the book snapshot is written by default
	DefaultSnapshotPath = "./books-snapshot.csv"

	// Entity store backends
	BackendGorm = "gorm"
	BackendSQLX = "sqlx"
)
