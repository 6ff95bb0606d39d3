package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthCookie is the cookie the session token is stored in after login
const AuthCookie = "auth_token"

// NewAuthMiddleware authenticates requests with a session token from the
// auth_token cookie or an "Authorization: Bearer" header. The token is only
// accepted while its session ID matches the user's current session, so a
// logout invalidates every token issued before it.
//
// With required set to false a request without a token passes through
// anonymously, but a token that is present and invalid is still rejected.
// On success the user ID (uint) is stored as "userID".
func NewAuthMiddleware(s *store.Store, secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if !required {
				c.Next()
				return
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail":    "Not authenticated",
				"requestID": requestID,
			})
			return
		}

		claims, err := security.ParseSession(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail":    "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Failed to parse token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		user, err := s.UserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"detail":    "Authorization token invalid",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"detail":    "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up session user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if user.SessionID == nil || *user.SessionID != claims.SessionID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail":    "Session expired. Please log in again",
				"requestID": requestID,
			})
			return
		}

		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail":    "Please verify your account before using the service",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", user.ID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}

	return ""
}
