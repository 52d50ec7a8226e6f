package http

import (
	"context"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

// Each controller depends only on the slice of the catalog it calls.
// catalog.Service satisfies all of them.

// BookCatalog covers book maintenance and checkout.
type BookCatalog interface {
	AddBook(ctx context.Context, title, author string) (*entities.Book, error)
	DeleteBook(ctx context.Context, bookID uint) error
	EditBook(ctx context.Context, bookID uint, update catalog.BookUpdate) (*entities.Book, error)
	GetBook(ctx context.Context, bookID uint) (*entities.Book, error)
	ListAllBooks(ctx context.Context) ([]entities.Book, error)
}

// CheckoutCatalog covers holder changes and holder queries.
type CheckoutCatalog interface {
	CheckOutBook(ctx context.Context, bookID, userID uint) error
	ReturnBook(ctx context.Context, bookID uint) error
	ListCheckedOutUsers(ctx context.Context) ([]entities.User, error)
}

// UserCatalog covers user registration and borrowed-book lookup.
type UserCatalog interface {
	AddUser(ctx context.Context, name string) (*entities.User, error)
	ListBorrowedBooks(ctx context.Context, userID uint) ([]entities.Book, error)
}

// SnapshotResyncer forces a snapshot rewrite.
type SnapshotResyncer interface {
	ResyncSnapshot(ctx context.Context) error
}

// SnapshotStatusReporter exposes the last snapshot run.
type SnapshotStatusReporter interface {
	Status() catalog.SyncStatus
}

// AuditReader reads recorded catalog events.
type AuditReader interface {
	RecentEvents(limit int) ([]entities.AuditEvent, error)
	EntityHistory(entityType string, entityID uint) ([]entities.AuditEvent, error)
}

// Pinger checks entity store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
