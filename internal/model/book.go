package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lending state of a book listing. It is a flat two-value flag;
// transitions between the two states are unrestricted.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusBorrowed  Status = "BORROWED"
)

// ParseStatus converts a client-supplied string to a Status. Matching is
// case-insensitive; unrecognized values are an error.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(s) {
	case string(StatusAvailable):
		return StatusAvailable, nil
	case string(StatusBorrowed):
		return StatusBorrowed, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Book represents a book listing offered for swap or borrowing.
// OwnerID is set once at creation and never reassigned.
type Book struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Author       string    `json:"author" gorm:"size:255;not null"`
	Subject      string    `json:"subject" gorm:"size:255;not null;index"`
	Description  string    `json:"description,omitempty" gorm:"size:2000"`
	ContactEmail string    `json:"contact_email" gorm:"size:255;not null"`
	OwnerID      uint      `json:"owner_id" gorm:"not null;index"`
	Owner        User      `json:"owner" gorm:"foreignKey:OwnerID"`
	Status       Status    `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsOwner reports whether the given user may mutate or delete the listing.
func IsOwner(book *Book, userID uint) bool {
	return book != nil && book.OwnerID == userID
}
