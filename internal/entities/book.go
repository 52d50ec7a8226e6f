package entities

import "time"

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id" db:"id"`
	Title     string    `gorm:"size:512;not null" json:"title" db:"title"`
	Author    string    `gorm:"size:256" json:"author" db:"author"`
	HolderID  *uint     `gorm:"index" json:"holder_id" db:"holder_id"` // nil while the book is available
	Holder    *User     `gorm:"foreignKey:HolderID;constraint:OnDelete:SET NULL" json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether no user currently holds the book.
func (b Book) IsAvailable() bool {
	return b.HolderID == nil
}

// IsHeldBy reports whether the given user currently holds the book.
func (b Book) IsHeldBy(userID uint) bool {
	return b.HolderID != nil && *b.HolderID == userID
}

// BookSummary is the listing shape of a book.
type BookSummary struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (b Book) Summary() BookSummary {
	return BookSummary{ID: b.ID, Title: b.Title, Author: b.Author}
}
