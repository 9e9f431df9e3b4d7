package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gotrs-io/gotrs-desk/internal/auth"
	"github.com/gotrs-io/gotrs-desk/internal/logging"
)

// Context keys set by RequireAuth.
const (
	ContextUserID    = "user_id"
	ContextCompanyID = "company_id"
	ContextProfile   = "profile"
	ContextClaims    = "claims"
)

// AuthMiddleware authenticates API requests by access token.
type AuthMiddleware struct {
	jwtManager  *auth.JWTManager
	revocations auth.RevocationStore
}

// NewAuthMiddleware validates bearer tokens with jwtManager. A nil
// revocations store skips the revoked-session check.
func NewAuthMiddleware(jwtManager *auth.JWTManager, revocations auth.RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:  jwtManager,
		revocations: revocations,
	}
}

// RequireAuth rejects requests without a valid, unrevoked token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			m.unauthorizedResponse(c, "Missing authorization token")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			m.unauthorizedResponse(c, msg)
			return
		}

		if m.revocations != nil && claims.ID != "" {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logging.FromContext(c.Request.Context()).Error("revocation check failed",
					"session_id", claims.ID, "error", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"success": false,
					"error":   "Authentication backend unavailable",
				})
				return
			}
			if revoked {
				m.unauthorizedResponse(c, "Session has been terminated")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextProfile, claims.Profile)
		c.Set(ContextClaims, claims)

		logger := logging.FromContext(c.Request.Context()).With(
			slog.Uint64("company_id", uint64(claims.CompanyID)),
			slog.Uint64("user_id", uint64(claims.UserID)),
		)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Bearer token format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

func (m *AuthMiddleware) unauthorizedResponse(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}

// Caller returns the authenticated company and user ids set by RequireAuth.
func Caller(c *gin.Context) (companyID, userID uint, ok bool) {
	company, okCompany := c.Get(ContextCompanyID)
	user, okUser := c.Get(ContextUserID)
	if !okCompany || !okUser {
		return 0, 0, false
	}
	companyID, okCompany = company.(uint)
	userID, okUser = user.(uint)
	return companyID, userID, okCompany && okUser
}
