package auth

import "net/http"

// Error is a client-facing authentication failure. Every value in the
// taxonomy maps to a 4xx status; the caller is expected to re-authenticate,
// there are no retry semantics. Infrastructure failures (database errors)
// are returned as ordinary errors and never wrapped in this type.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password"}

	ErrRefreshTokenNotFound = &Error{Status: http.StatusForbidden, Message: "Refresh token not found"}
	ErrRefreshTokenExpired  = &Error{Status: http.StatusForbidden, Message: "Refresh token was expired. Please make a new signin request"}

	ErrUnauthenticated = &Error{Status: http.StatusUnauthorized, Message: "You are not logged in! Please log in to get access."}
	ErrTokenRevoked    = &Error{Status: http.StatusUnauthorized, Message: "This token has been revoked. Please log in again."}
	ErrInvalidToken    = &Error{Status: http.StatusUnauthorized, Message: "Invalid token. Please log in again!"}
	ErrUserGone        = &Error{Status: http.StatusUnauthorized, Message: "The user belonging to this token does no longer exist."}
)
