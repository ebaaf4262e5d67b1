package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gatepass-server/internal/models"
)

// GormRefreshLedger persists refresh-token rows. One row is one active
// session; the table is the source of truth for refresh-token validity.
// Expiry is checked by the session service at read time, not here.
type GormRefreshLedger struct {
	DB *gorm.DB
}

// NewRefreshLedger creates a refresh-token ledger backed by the database.
func NewRefreshLedger(db *gorm.DB) *GormRefreshLedger {
	return &GormRefreshLedger{DB: db}
}

// Create inserts a new session row. Token collisions are not specially
// handled; with high-entropy generation they surface as an insert error.
func (l *GormRefreshLedger) Create(ctx context.Context, token, userID string, expiresAt time.Time) error {
	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return l.DB.WithContext(ctx).Create(&row).Error
}

// FindByToken returns the row for a token, or nil when absent.
func (l *GormRefreshLedger) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := l.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// DeleteByToken removes the row for a token. Deleting a token that does not
// exist is a no-op, not an error.
func (l *GormRefreshLedger) DeleteByToken(ctx context.Context, token string) error {
	return l.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

// GormBlacklist persists revoked access tokens. Entries are write-once; the
// only read is an existence check with no expiry filtering, so a blacklisted
// token stays blacklisted in storage past its own expiry. PurgeExpired bounds
// the resulting growth.
type GormBlacklist struct {
	DB *gorm.DB
}

// NewBlacklist creates a revocation ledger backed by the database.
func NewBlacklist(db *gorm.DB) *GormBlacklist {
	return &GormBlacklist{DB: db}
}

// Add inserts a denylist entry for an access token that has not yet
// naturally expired.
func (b *GormBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	row := models.BlacklistedToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return b.DB.WithContext(ctx).Create(&row).Error
}

// IsBlacklisted reports whether a token has a denylist entry.
func (b *GormBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var count int64
	err := b.DB.WithContext(ctx).Model(&models.BlacklistedToken{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired deletes entries whose own expiry has passed. The issuer would
// reject those tokens anyway; this sweep only keeps the table from growing
// without bound.
func (b *GormBlacklist) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := b.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.BlacklistedToken{})
	return result.RowsAffected, result.Error
}

// GormCredentialStore reads staff accounts. Accounts are provisioned
// out-of-band; this store never writes.
type GormCredentialStore struct {
	DB *gorm.DB
}

// NewCredentialStore creates a credential store backed by the database.
func NewCredentialStore(db *gorm.DB) *GormCredentialStore {
	return &GormCredentialStore{DB: db}
}

// FindByEmail returns the user with the given email, or nil when absent.
func (s *GormCredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given id, or nil when absent.
func (s *GormCredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
