package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gatepass-server/internal/models"
)

// ===== MOCKS =====

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRefreshLedger struct {
	mock.Mock
}

func (m *MockRefreshLedger) Create(ctx context.Context, token, userID string, expiresAt time.Time) error {
	args := m.Called(ctx, token, userID, expiresAt)
	return args.Error(0)
}

func (m *MockRefreshLedger) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if row, ok := args.Get(0).(*models.RefreshToken); ok {
		return row, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshLedger) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockBlacklist struct {
	mock.Mock
}

func (m *MockBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	args := m.Called(ctx, token, expiresAt)
	return args.Error(0)
}

func (m *MockBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
	sent chan struct{}
}

func (m *MockNotifier) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	if m.sent != nil {
		m.sent <- struct{}{}
	}
	return args.Error(0)
}

// ===== FIXTURE =====

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *MockCredentialStore
	refresh   *MockRefreshLedger
	blacklist *MockBlacklist
	issuer    *TokenIssuer
	svc       *Service
}

func newFixture(notifier Notifier) *fixture {
	f := &fixture{
		store:     &MockCredentialStore{},
		refresh:   &MockRefreshLedger{},
		blacklist: &MockBlacklist{},
		issuer:    NewTokenIssuer("test-secret", 20*time.Minute, 7*24*time.Hour, fixedClock(testNow)),
	}
	f.svc = NewService(f.store, f.refresh, f.blacklist, f.issuer, notifier, fixedClock(testNow))
	return f
}

// ===== LOGIN =====

func TestLoginSuccessPersistsSession(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	f.store.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.refresh.On("Create", mock.Anything, mock.AnythingOfType("string"), user.ID, testNow.Add(7*24*time.Hour)).Return(nil)

	result, err := f.svc.Login(context.Background(), user.Email, "admin123")
	require.NoError(t, err)
	assert.Equal(t, user, result.User)
	assert.NotEmpty(t, result.RefreshToken)

	// The access token is verifiable and identifies the user
	claims, err := f.issuer.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	f.refresh.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	f.store.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := f.svc.Login(context.Background(), user.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	f.refresh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(nil)

	f.store.On("FindByEmail", mock.Anything, "nobody@parking.com").Return(nil, nil)

	_, err := f.svc.Login(context.Background(), "nobody@parking.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	f.refresh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginSendsNotification(t *testing.T) {
	notifier := &MockNotifier{sent: make(chan struct{}, 1)}
	f := newFixture(notifier)
	user := testUser(t)

	f.store.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.refresh.On("Create", mock.Anything, mock.Anything, user.ID, mock.Anything).Return(nil)
	notifier.On("Send", user.Email, "Login Notification", mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Login(context.Background(), user.Email, "admin123")
	require.NoError(t, err)

	select {
	case <-notifier.sent:
	case <-time.After(time.Second):
		t.Fatal("login notification was never dispatched")
	}
	notifier.AssertExpectations(t)
}

func TestLoginSucceedsWhenNotificationFails(t *testing.T) {
	notifier := &MockNotifier{sent: make(chan struct{}, 1)}
	f := newFixture(notifier)
	user := testUser(t)

	f.store.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.refresh.On("Create", mock.Anything, mock.Anything, user.ID, mock.Anything).Return(nil)
	notifier.On("Send", user.Email, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	result, err := f.svc.Login(context.Background(), user.Email, "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	<-notifier.sent
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	f.store.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.refresh.On("Create", mock.Anything, mock.Anything, user.ID, mock.Anything).Return(nil)

	first, err := f.svc.Login(context.Background(), user.Email, "admin123")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), user.Email, "admin123")
	require.NoError(t, err)

	// Two logins, two distinct sessions
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	f.refresh.AssertNumberOfCalls(t, "Create", 2)

	// Revoking one leaves the other untouched
	f.refresh.On("DeleteByToken", mock.Anything, first.RefreshToken).Return(nil)
	require.NoError(t, f.svc.Logout(context.Background(), first.RefreshToken, ""))
	f.refresh.AssertNotCalled(t, "DeleteByToken", mock.Anything, second.RefreshToken)
}

// ===== REFRESH =====

func TestRefreshReturnsNewAccessToken(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	row := &models.RefreshToken{
		Token:     "live-token",
		UserID:    user.ID,
		ExpiresAt: testNow.Add(24 * time.Hour),
	}
	f.refresh.On("FindByToken", mock.Anything, "live-token").Return(row, nil)
	f.store.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	result, err := f.svc.Refresh(context.Background(), "live-token")
	require.NoError(t, err)

	// The refresh token is not rotated
	assert.Equal(t, "live-token", result.RefreshToken)

	claims, err := f.issuer.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newFixture(nil)

	f.refresh.On("FindByToken", mock.Anything, "missing").Return(nil, nil)

	_, err := f.svc.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshExpiredTokenDeletedOnRead(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	row := &models.RefreshToken{
		Token:     "stale-token",
		UserID:    user.ID,
		ExpiresAt: testNow.Add(-time.Minute),
	}
	f.refresh.On("FindByToken", mock.Anything, "stale-token").Return(row, nil).Once()
	f.refresh.On("DeleteByToken", mock.Anything, "stale-token").Return(nil).Once()

	_, err := f.svc.Refresh(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
	f.refresh.AssertExpectations(t)

	// The row is gone, so presenting the same string again is NotFound
	f.refresh.On("FindByToken", mock.Anything, "stale-token").Return(nil, nil).Once()
	_, err = f.svc.Refresh(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshOwnerGone(t *testing.T) {
	f := newFixture(nil)

	row := &models.RefreshToken{
		Token:     "orphan-token",
		UserID:    "deleted-user",
		ExpiresAt: testNow.Add(24 * time.Hour),
	}
	f.refresh.On("FindByToken", mock.Anything, "orphan-token").Return(row, nil)
	f.store.On("FindByID", mock.Anything, "deleted-user").Return(nil, nil)

	_, err := f.svc.Refresh(context.Background(), "orphan-token")
	assert.ErrorIs(t, err, ErrUserGone)
}

// ===== LOGOUT =====

func TestLogoutDeletesRefreshToken(t *testing.T) {
	f := newFixture(nil)

	f.refresh.On("DeleteByToken", mock.Anything, "some-token").Return(nil)

	require.NoError(t, f.svc.Logout(context.Background(), "some-token", ""))
	f.refresh.AssertExpectations(t)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)

	f.blacklist.On("Add", mock.Anything, accessToken, mock.MatchedBy(func(expiry time.Time) bool {
		return expiry.Unix() == testNow.Add(20*time.Minute).Unix()
	})).Return(nil)

	require.NoError(t, f.svc.Logout(context.Background(), "", accessToken))
	f.blacklist.AssertExpectations(t)
}

func TestLogoutSkipsUndecodableAccessToken(t *testing.T) {
	f := newFixture(nil)

	require.NoError(t, f.svc.Logout(context.Background(), "", "not-a-jwt"))
	f.blacklist.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutWithNoTokensIsNoOp(t *testing.T) {
	f := newFixture(nil)

	require.NoError(t, f.svc.Logout(context.Background(), "", ""))
	f.refresh.AssertNotCalled(t, "DeleteByToken", mock.Anything, mock.Anything)
	f.blacklist.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

// ===== AUTHORIZE / IDENTIFY =====

func TestAuthorizeMissingToken(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorizeRevokedToken(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)

	// Still within its natural lifetime, but blacklisted by logout
	f.blacklist.On("IsBlacklisted", mock.Anything, accessToken).Return(true, nil)

	_, err = f.svc.Authorize(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthorizeMalformedToken(t *testing.T) {
	f := newFixture(nil)

	f.blacklist.On("IsBlacklisted", mock.Anything, "malformed").Return(false, nil)

	_, err := f.svc.Authorize(context.Background(), "malformed")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeExpiredToken(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	past := NewTokenIssuer("test-secret", 20*time.Minute, 7*24*time.Hour, fixedClock(testNow.Add(-time.Hour)))
	accessToken, err := past.IssueAccessToken(user)
	require.NoError(t, err)

	f.blacklist.On("IsBlacklisted", mock.Anything, accessToken).Return(false, nil)

	_, err = f.svc.Authorize(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeUserGone(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)

	f.blacklist.On("IsBlacklisted", mock.Anything, accessToken).Return(false, nil)
	f.store.On("FindByID", mock.Anything, user.ID).Return(nil, nil)

	_, err = f.svc.Authorize(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrUserGone)
}

func TestAuthorizeSuccess(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)

	f.blacklist.On("IsBlacklisted", mock.Anything, accessToken).Return(false, nil)
	f.store.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	resolved, err := f.svc.Authorize(context.Background(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, user, resolved)
}

func TestIdentifySwallowsFailures(t *testing.T) {
	f := newFixture(nil)
	user := testUser(t)

	f.blacklist.On("IsBlacklisted", mock.Anything, "broken").Return(false, nil)
	assert.Nil(t, f.svc.Identify(context.Background(), "broken"))
	assert.Nil(t, f.svc.Identify(context.Background(), ""))

	accessToken, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)
	f.blacklist.On("IsBlacklisted", mock.Anything, accessToken).Return(false, nil)
	f.store.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	assert.Equal(t, user, f.svc.Identify(context.Background(), accessToken))
}
