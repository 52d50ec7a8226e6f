// Package users provides database operations for library users.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByID(id)
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user. The store assigns the ID.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetHolders returns the users holding at least one book, ordered by ID.
// A user holding several books appears once.
func (r *Repository) GetHolders() ([]entities.User, error) {
	holders := r.db.Model(&entities.Book{}).Select("holder_id").Where("holder_id IS NOT NULL")

	users := []entities.User{}
	err := r.db.Where("id IN (?)", holders).Order("id ASC").Find(&users).Error
	return users, err
}
