package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatepass-server/internal/models"
)

// CredentialStore reads staff accounts.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RefreshLedger persists refresh-token rows, one per active session.
type RefreshLedger interface {
	Create(ctx context.Context, token, userID string, expiresAt time.Time) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// Blacklist persists access tokens revoked before their natural expiry.
type Blacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Notifier delivers best-effort side-channel notifications. Failures are
// logged by the caller and never affect the outcome of the operation that
// triggered them.
type Notifier interface {
	Send(to, subject, body string) error
}

// Service orchestrates the session lifecycle: login, refresh, logout, and
// the authorization decision behind the access guard. All session truth
// lives in the two ledgers; the service itself holds no mutable state, so
// concurrent logins by the same user simply produce independent sessions.
type Service struct {
	store     CredentialStore
	refresh   RefreshLedger
	blacklist Blacklist
	issuer    *TokenIssuer
	notifier  Notifier
	now       func() time.Time
}

// NewService creates a session service. notifier may be nil to disable login
// notifications; pass nil for now to use time.Now.
func NewService(store CredentialStore, refresh RefreshLedger, blacklist Blacklist, issuer *TokenIssuer, notifier Notifier, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     store,
		refresh:   refresh,
		blacklist: blacklist,
		issuer:    issuer,
		notifier:  notifier,
		now:       now,
	}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult is returned by Refresh. The refresh token is the same string
// the client presented; refresh tokens are not rotated.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// Login validates credentials, mints a token pair and persists the new
// session. A missing user and a wrong password produce the same error so
// the response does not leak which check failed.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt := s.issuer.NewRefreshToken()
	if err := s.refresh.Create(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	// Login notification is fire-and-forget: a mail outage must not fail
	// or delay the login itself.
	if s.notifier != nil {
		go func(name, email string) {
			body := fmt.Sprintf("Hello %s,\n\nYou have successfully logged in to the Visitor Parking System.", name)
			if err := s.notifier.Send(email, "Login Notification", body); err != nil {
				log.Printf("failed to send login notification to %s: %v", email, err)
			}
		}(user.Name, user.Email)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. An expired row
// is deleted on the spot; that delete-on-read is the only cleanup mechanism
// for stale sessions, there is no background sweep.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	row, err := s.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if row == nil {
		return nil, ErrRefreshTokenNotFound
	}

	if row.ExpiresAt.Before(s.now()) {
		if err := s.refresh.DeleteByToken(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("failed to delete expired refresh token: %w", err)
		}
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.store.FindByID(ctx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserGone
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout terminates a session. Both tokens are optional and the two steps
// are independent and idempotent: the access token, if decodable, goes on
// the blacklist until its natural expiry; the refresh token row, if any, is
// deleted. An access token that fails to decode is silently not blacklisted.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if accessToken != "" {
		if expiresAt, ok := s.issuer.DecodeExpiry(accessToken); ok {
			if err := s.blacklist.Add(ctx, accessToken, expiresAt); err != nil {
				return fmt.Errorf("failed to blacklist access token: %w", err)
			}
		}
	}

	if refreshToken != "" {
		if err := s.refresh.DeleteByToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}
	}

	return nil
}

// Authorize decides whether an access token grants access, first match
// wins: missing token, revoked token, bad signature or expiry, vanished
// user. The blacklist is consulted before signature verification, and the
// decision never proceeds until that read completes.
func (s *Service) Authorize(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.issuer.VerifyAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserGone
	}

	return user, nil
}

// Identify is the non-enforcing variant of Authorize: it resolves a user
// when the token is valid and yields nil in every other case, swallowing
// all verification errors. Used only to tailor optional UI state.
func (s *Service) Identify(ctx context.Context, token string) *models.User {
	user, err := s.Authorize(ctx, token)
	if err != nil {
		return nil
	}
	return user
}
