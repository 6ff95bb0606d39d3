package user

import (
	"errors"
	"net/http"
	"time"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "No verification token provided",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Store.Activate(c.Request.Context(), security.HashToken(token), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTokenInvalid):
			c.JSON(http.StatusNotFound, gin.H{
				"detail":    "Token invalid or already used",
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{
				"detail":    "Token expired. Please request a new verification email",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"detail":    "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to activate user", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"user":    user,
	})
}
