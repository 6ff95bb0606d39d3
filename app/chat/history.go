package chat

import (
	"net/http"
	"strconv"

	"hopperai/chat-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHistory returns the caller's stored chats, newest first
func ChatHistory(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	limit := d.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail":    "limit must be a positive integer",
				"requestID": requestID,
			})
			return
		}

		limit = min(n, d.HistoryLimit)
	}

	chats, err := d.Store.ChatsByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch chat history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chats": chats,
	})
}
