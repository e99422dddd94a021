package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/dto"
	"github.com/prperemyshlev/siteauth/internal/service"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or returns "" when the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// userID returns the authenticated user's id set by AuthMiddleware.
func userID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// siteID returns the authenticated user's site id set by AuthMiddleware.
func siteID(c *gin.Context) int64 {
	return c.GetInt64("site_id")
}

// AuthMiddleware validates the session token and adds user info to the
// request context. Validation is non-destructive: the token stays live.
func AuthMiddleware(tokenService service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "authorization header is required",
			})
			c.Abort()
			return
		}

		authToken, err := tokenService.ValidateAuthToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", authToken.UserID)
		c.Set("site_id", authToken.SiteID)

		c.Next()
	}
}

// RequireRole guards a route group behind a minimum role. Must run after
// AuthMiddleware.
func RequireRole(authService service.AuthService, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authService.GetUser(c.Request.Context(), userID(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid or expired token",
			})
			c.Abort()
			return
		}

		if user.Role != role {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "forbidden",
				Message: "insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// MasterKeyMiddleware guards operator endpoints behind the static master
// API key. The comparison is constant time.
func MasterKeyMiddleware(masterKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if masterKey == "" {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error: "master API key is not configured",
			})
			c.Abort()
			return
		}

		presented := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(masterKey)) != 1 {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid API key",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
