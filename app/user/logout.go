package user

import (
	"net/http"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLogout drops the current session, which invalidates every token issued for it
func UserLogout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	if err := d.Store.ClearSession(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to clear session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", d.SSLEnabled, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
