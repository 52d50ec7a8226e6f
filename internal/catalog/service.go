// Package catalog is the single writer of books and users. It enforces the
// checkout rules, turns missing ids into NotFoundError, and refreshes the
// book snapshot after every successful change to the book collection.
//
// Every operation runs in exactly one store transaction. Book mutations then
// call the Synchronizer before returning, so a caller that sees success also
// sees an up-to-date snapshot. When only the snapshot step fails the
// operation still returns its result together with an *ExportError:
//
//	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert")
//	switch {
//	case err == nil:
//	case catalog.IsAppliedWithStaleSnapshot(err):
//		// book was stored; snapshot is behind until the next resync
//	default:
//		// nothing was stored
//	}
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

// Synchronizer refreshes the book snapshot from the store.
type Synchronizer interface {
	// Sync runs after a book mutation and may schedule a repair on failure.
	Sync(ctx context.Context) error
	// Resync forces an export from the current store state.
	Resync(ctx context.Context) error
}

// EventRecorder receives one event per state-changing operation.
type EventRecorder interface {
	RecordEvent(action entities.AuditAction, entityType string, entityID uint, description string, err error)
}

// BookUpdate carries the fields of a partial edit. Nil fields are left
// untouched; a non-nil empty Author clears the author.
type BookUpdate struct {
	Title  *string
	Author *string
}

type Service struct {
	store    store.Store
	syncer   Synchronizer
	recorder EventRecorder
}

func NewService(s store.Store, syncer Synchronizer) *Service {
	return &Service{store: s, syncer: syncer}
}

// SetRecorder attaches an audit recorder. Optional.
func (s *Service) SetRecorder(recorder EventRecorder) {
	s.recorder = recorder
}

func (s *Service) AddBook(ctx context.Context, title, author string) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}

	book := &entities.Book{Title: title, Author: strings.TrimSpace(author)}
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.CreateBook(book)
	})
	if err != nil {
		err = translate("add book", err)
		s.record(entities.AuditActionAddBook, ResourceBook, 0, fmt.Sprintf("Add book '%s'", title), err)
		return nil, err
	}

	s.record(entities.AuditActionAddBook, ResourceBook, book.ID, fmt.Sprintf("Added book '%s'", book.Title), nil)
	return book, s.syncSnapshot(ctx)
}

func (s *Service) DeleteBook(ctx context.Context, bookID uint) error {
	var title string
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}
		title = book.Title
		return tx.DeleteBook(book.ID)
	})
	if err != nil {
		err = translate("delete book", err)
		s.record(entities.AuditActionDeleteBook, ResourceBook, bookID, fmt.Sprintf("Delete book %d", bookID), err)
		return err
	}

	s.record(entities.AuditActionDeleteBook, ResourceBook, bookID, fmt.Sprintf("Deleted book '%s'", title), nil)
	return s.syncSnapshot(ctx)
}

// EditBook applies the fields set in update. A field that is set overwrites
// the stored value even when it is empty.
func (s *Service) EditBook(ctx context.Context, bookID uint, update BookUpdate) (*entities.Book, error) {
	var book *entities.Book
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		book, err = getBook(tx, bookID)
		if err != nil {
			return err
		}
		if update.Title != nil {
			book.Title = strings.TrimSpace(*update.Title)
		}
		if update.Author != nil {
			book.Author = strings.TrimSpace(*update.Author)
		}
		return tx.UpdateBook(book)
	})
	if err != nil {
		err = translate("edit book", err)
		s.record(entities.AuditActionEditBook, ResourceBook, bookID, fmt.Sprintf("Edit book %d", bookID), err)
		return nil, err
	}

	s.record(entities.AuditActionEditBook, ResourceBook, bookID, fmt.Sprintf("Edited book '%s'", book.Title), nil)
	return book, s.syncSnapshot(ctx)
}

// AddUser creates a user. Users are not part of the snapshot, so no sync runs.
func (s *Service) AddUser(ctx context.Context, name string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}

	user := &entities.User{Name: name}
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.CreateUser(user)
	})
	if err != nil {
		err = translate("add user", err)
		s.record(entities.AuditActionAddUser, ResourceUser, 0, fmt.Sprintf("Add user '%s'", name), err)
		return nil, err
	}

	s.record(entities.AuditActionAddUser, ResourceUser, user.ID, fmt.Sprintf("Added user '%s'", user.Name), nil)
	return user, nil
}

// CheckOutBook makes userID the holder of bookID. Both ids must resolve
// before anything is written. A book that is already checked out moves to
// the new holder.
func (s *Service) CheckOutBook(ctx context.Context, bookID, userID uint) error {
	var previous *uint
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}
		user, err := getUser(tx, userID)
		if err != nil {
			return err
		}

		previous = book.HolderID
		book.HolderID = &user.ID
		return tx.UpdateBook(book)
	})
	if err != nil {
		err = translate("check out book", err)
		s.record(entities.AuditActionCheckOutBook, ResourceBook, bookID, fmt.Sprintf("Check out book %d to user %d", bookID, userID), err)
		return err
	}

	description := fmt.Sprintf("Checked out book %d to user %d", bookID, userID)
	if previous != nil && *previous != userID {
		description += fmt.Sprintf(" (previously held by user %d)", *previous)
	}
	s.record(entities.AuditActionCheckOutBook, ResourceBook, bookID, description, nil)
	return s.syncSnapshot(ctx)
}

// ReturnBook clears the holder of bookID. Returning an available book is a no-op.
func (s *Service) ReturnBook(ctx context.Context, bookID uint) error {
	var previous *uint
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}
		if book.IsAvailable() {
			return nil
		}
		previous = book.HolderID
		book.HolderID = nil
		return tx.UpdateBook(book)
	})
	if err != nil {
		err = translate("return book", err)
		s.record(entities.AuditActionReturnBook, ResourceBook, bookID, fmt.Sprintf("Return book %d", bookID), err)
		return err
	}

	description := fmt.Sprintf("Book %d was already available", bookID)
	if previous != nil {
		description = fmt.Sprintf("Returned book %d from user %d", bookID, *previous)
	}
	s.record(entities.AuditActionReturnBook, ResourceBook, bookID, description, nil)
	return s.syncSnapshot(ctx)
}

func (s *Service) GetBook(ctx context.Context, bookID uint) (*entities.Book, error) {
	var book *entities.Book
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		book, err = getBook(tx, bookID)
		return err
	})
	if err != nil {
		return nil, translate("get book", err)
	}
	return book, nil
}

// ListAllBooks returns every book ordered by id.
func (s *Service) ListAllBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		books, err = tx.GetAllBooks()
		return err
	})
	if err != nil {
		return nil, translate("list books", err)
	}
	return books, nil
}

// ListCheckedOutUsers returns each user holding at least one book, once.
func (s *Service) ListCheckedOutUsers(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		users, err = tx.GetHolders()
		return err
	})
	if err != nil {
		return nil, translate("list checked out users", err)
	}
	return users, nil
}

// ListBorrowedBooks returns the books held by userID ordered by id.
func (s *Service) ListBorrowedBooks(ctx context.Context, userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := getUser(tx, userID); err != nil {
			return err
		}
		var err error
		books, err = tx.GetBooksByHolder(userID)
		return err
	})
	if err != nil {
		return nil, translate("list borrowed books", err)
	}
	return books, nil
}

// ResyncSnapshot rewrites the snapshot from current store state. Use it to
// repair a snapshot left behind by a failed export.
func (s *Service) ResyncSnapshot(ctx context.Context) error {
	if s.syncer == nil {
		return nil
	}
	err := s.syncer.Resync(ctx)
	s.record(entities.AuditActionResyncSnapshot, "snapshot", 0, "Forced snapshot resync", err)
	return err
}

func (s *Service) syncSnapshot(ctx context.Context) error {
	if s.syncer == nil {
		return nil
	}
	return s.syncer.Sync(ctx)
}

func (s *Service) record(action entities.AuditAction, entityType string, entityID uint, description string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordEvent(action, entityType, entityID, description, err)
}

func getBook(tx store.Tx, id uint) (*entities.Book, error) {
	book, err := tx.GetBookByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: ResourceBook, ID: id}
	}
	return book, err
}

func getUser(tx store.Tx, id uint) (*entities.User, error) {
	user, err := tx.GetUserByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: ResourceUser, ID: id}
	}
	return user, err
}
