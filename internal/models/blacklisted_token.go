package models

import (
	"time"
)

// BlacklistedToken is a denylist entry for an access token revoked before
// its natural expiry. There is no foreign key on purpose: logout must keep
// working even if the owning user record changes. ExpiresAt is copied from
// the token's own exp claim so expired entries can be purged.
type BlacklistedToken struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}
