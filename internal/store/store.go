// Package store defines the data-access contract the catalog needs from an
// entity store backend.
//
// A backend hands out one Tx per Transaction call. The Tx is only valid inside
// the callback: returning nil commits, returning an error (or panicking) rolls
// back. Backends translate their "no rows" conditions into ErrNotFound so the
// catalog never depends on a particular driver.
//
// Implementations:
//
//   - database.Database: gorm + sqlite (default)
//   - sqlstore.Store: sqlx + goqu over sqlite3 or postgres
package store

import (
	"context"
	"errors"

	"github.com/mrlokans/library/internal/entities"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is a transactional entity store.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of operations available inside a single transaction.
// All list operations return records ordered by id.
type Tx interface {
	BookTx
	UserTx
}

type BookTx interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
	GetAllBooks() ([]entities.Book, error)
	GetBooksByHolder(userID uint) ([]entities.Book, error)
}

type UserTx interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	// GetHolders returns every user holding at least one book, once each.
	GetHolders() ([]entities.User, error)
}
