package sqlstore

const (
	tableBooks = "books"
	tableUsers = "users"

	colID        = "id"
	colTitle     = "title"
	colAuthor    = "author"
	colHolderID  = "holder_id"
	colName      = "name"
	colCreatedAt = "created_at"
	colUpdatedAt = "updated_at"
)

var bookColumns = []any{colID, colTitle, colAuthor, colHolderID, colCreatedAt, colUpdatedAt}

var userColumns = []any{colID, colName, colCreatedAt}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		holder_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_holder_id ON books(holder_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		holder_id BIGINT NULL REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_holder_id ON books(holder_id)`,
}
