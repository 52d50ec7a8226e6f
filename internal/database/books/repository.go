// Package books provides database operations for books and their holders.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
//	borrowed, err := repo.GetBooksByHolder(userID)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new book. The store assigns the ID.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Omit("Holder").Create(book).Error
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("book %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook writes every column of the book, including a cleared holder.
func (r *Repository) UpdateBook(book *entities.Book) error {
	result := r.db.Model(book).Updates(map[string]any{
		"title":     book.Title,
		"author":    book.Author,
		"holder_id": book.HolderID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", book.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteBook removes a book permanently.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// GetAllBooks retrieves all books ordered by ID.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// GetBooksByHolder retrieves the books currently held by a user, ordered by ID.
func (r *Repository) GetBooksByHolder(userID uint) ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.db.Where("holder_id = ?", userID).Order("id ASC").Find(&books).Error
	return books, err
}
