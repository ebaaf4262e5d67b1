package models

import (
	"time"
)

// RefreshToken represents one active session in the database. The token
// string is opaque (not a JWT) and is the only handle the client holds.
// Rows are removed on logout, or lazily when presented after expiry.
type RefreshToken struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`

	// Define the relationship to User
	User User `gorm:"foreignKey:UserID" json:"-"`
}
