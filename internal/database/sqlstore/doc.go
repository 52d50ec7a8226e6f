// Package sqlstore is an entity store built on sqlx and the goqu query
// builder. It speaks two dialects:
//
//   - "sqlite3" through github.com/mattn/go-sqlite3 (dsn is a file path)
//   - "postgres" through github.com/lib/pq (dsn is a connection string)
//
// Tables are created on Open when missing. Ids come from AUTOINCREMENT
// (sqlite) or BIGSERIAL (postgres) so a deleted id is never handed out again.
//
//	s, err := sqlstore.Open(ctx, sqlstore.DialectSQLite3, "./library.db")
//	err = s.Transaction(ctx, func(tx store.Tx) error { ... })
package sqlstore
