package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"gatepass-server/internal/auth"
	"gatepass-server/internal/models"
	"gatepass-server/internal/utils"
)

// Authorizer is the slice of the session service the guard needs.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.User, error)
	Identify(ctx context.Context, token string) *models.User
}

// AccessTokenCookie is the cookie the access token is mirrored into for
// browser clients that do not set an Authorization header.
const AccessTokenCookie = "jwt"

// ExtractToken pulls the access token from the Authorization header,
// falling back to the jwt cookie. Returns "" when neither is present.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware creates the enforcing access guard. On success the
// resolved user is attached to the request context for downstream handlers.
func AuthMiddleware(svc Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Authorize(c.Request.Context(), ExtractToken(c))
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				utils.Error(c, authErr.Status, authErr.Message)
			} else {
				utils.InternalServerError(c, "Authorization check failed: "+err.Error())
			}
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)

		c.Next()
	}
}

// IsLoggedIn is the non-enforcing variant: it resolves the user from the
// jwt cookie when possible and continues regardless. Absence or invalidity
// of the token simply leaves the identity unset.
func IsLoggedIn(svc Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			if user := svc.Identify(c.Request.Context(), cookie); user != nil {
				c.Set("user", user)
				c.Set("userID", user.ID)
			}
		}
		c.Next()
	}
}

// GetUserFromContext returns the user attached by AuthMiddleware or IsLoggedIn.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
