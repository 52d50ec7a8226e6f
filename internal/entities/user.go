package entities

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id" db:"id"`
	Name      string    `gorm:"size:256;not null" json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the listing shape of a user.
type UserSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}
