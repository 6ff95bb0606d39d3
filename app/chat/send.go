// Package chat contains the chat completion endpoints
package chat

import (
	"errors"
	"net/http"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/gateway"
	"hopperai/chat-api/internal/model"
	"hopperai/chat-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendBody struct {
	Content *string `json:"content" binding:"required"`
}

// ChatSend forwards one message to the completion gateway. When the caller is
// authenticated the exchange is stored, a failed insert is only logged since
// the answer was already produced.
func ChatSend(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data sendBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":    "Request body must be a JSON object with a string content field",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.PromptValidator(*data.Content, d.MaxContentLength); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":    "content " + err.Error(),
			"requestID": requestID,
		})
		return
	}

	response, err := d.Completion.Complete(c.Request.Context(), *data.Content)
	if err != nil {
		abortUpstream(c, err, requestID)
		return
	}

	if v, ok := c.Get("userID"); ok {
		chat := &model.Chat{
			UserID:   v.(uint),
			Message:  *data.Content,
			Response: response,
		}

		if err := d.Store.CreateChat(c.Request.Context(), chat); err != nil {
			zap.L().Error("Failed to store chat", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"response": response,
	})
}

func abortUpstream(c *gin.Context, err error, requestID string) {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	var ue *gateway.UpstreamError
	if errors.As(err, &ue) {
		status = ue.HTTPStatus()
		detail = ue.Message
	}

	c.JSON(status, gin.H{
		"detail":    detail,
		"requestID": requestID,
	})

	zap.L().Error("Completion failed", zap.Error(err), zap.Int("status", status), zap.String("requestID", requestID))
}
