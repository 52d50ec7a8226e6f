// Package database provides the gorm-backed entity store.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, scoped transactions
//	├── books/           # Book CRUD and holder queries
//	├── users/           # User CRUD and holder listing
//	├── audit/           # Audit event persistence
//	└── sqlstore/        # Alternate store on sqlx + goqu (sqlite3, postgres)
//
// # Transactions
//
// Database implements store.Store. Each call to Transaction opens a gorm
// transaction and hands the callback a repository pair bound to it:
//
//	err := db.Transaction(ctx, func(tx store.Tx) error {
//		book, err := tx.GetBookByID(id)
//		if err != nil {
//			return err
//		}
//		book.Title = "Dune Messiah"
//		return tx.UpdateBook(book)
//	})
//
// The sub-package repositories can also be used directly on db.DB for
// read-only tooling.
package database
