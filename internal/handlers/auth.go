package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gatepass-server/internal/auth"
	"gatepass-server/internal/config"
	"gatepass-server/internal/middleware"
	"gatepass-server/internal/models"
	"gatepass-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Sessions *auth.Service
	Cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Cfg: cfg}
}

const refreshTokenCookie = "refreshToken"

// respondAuthError maps a session-service failure onto the response. Errors
// outside the auth taxonomy are infrastructure failures and become a 500.
func respondAuthError(c *gin.Context, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		utils.Error(c, authErr.Status, authErr.Message)
		return
	}
	utils.InternalServerError(c, err.Error())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	secure := h.Cfg.Environment != "development"

	// Access token cookie for browser clients, refresh token cookie for the
	// silent-refresh flow. Both HTTP-only.
	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken,
		h.Cfg.JWTExpirationMinutes*60, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, result.RefreshToken,
		h.Cfg.RefreshExpirationHours*60*60, "/", "", secure, true)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token.
// The refresh token itself is not rotated: the same string remains valid
// until its own expiry or explicit logout.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	// Fall back to the cookie when the body carries no token
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
			req.RefreshToken = cookie
		}
	}

	if req.RefreshToken == "" {
		utils.Forbidden(c, "Refresh Token is required!")
		return
	}

	result, err := h.Sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	secure := h.Cfg.Environment != "development"
	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken,
		h.Cfg.JWTExpirationMinutes*60, "/", "", secure, true)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout handles user logout. Both tokens are optional: the refresh token
// comes from the body or cookie, the access token from the bearer header or
// cookie. Whatever is present gets revoked.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
			req.RefreshToken = cookie
		}
	}

	accessToken := middleware.ExtractToken(c)

	if err := h.Sessions.Logout(c.Request.Context(), req.RefreshToken, accessToken); err != nil {
		respondAuthError(c, err)
		return
	}

	secure := h.Cfg.Environment != "development"
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)

	utils.Success(c, "Logout successful. Tokens have been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// SessionStatus reports whether the request carries a live session. Used by
// the UI to decide between the login screen and the dashboard; it never
// fails, matching the non-enforcing guard it sits behind.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Success(c, "No active session", gin.H{"loggedIn": false})
		return
	}

	utils.Success(c, "Active session", gin.H{"loggedIn": true, "user": user.Sanitize()})
}
