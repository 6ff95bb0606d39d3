// Package image contains the image generation endpoint
package image

import (
	"errors"
	"net/http"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/gateway"
	"hopperai/chat-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type generateBody struct {
	Prompt *string `json:"prompt" binding:"required"`
}

func ImageGenerate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data generateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":    "Request body must be a JSON object with a string prompt field",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.PromptValidator(*data.Prompt, d.MaxContentLength); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":    "prompt " + err.Error(),
			"requestID": requestID,
		})
		return
	}

	url, err := d.Images.Generate(c.Request.Context(), *data.Prompt)
	if err != nil {
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

		zap.L().Error("Image generation failed", zap.Error(err), zap.Int("status", status), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_url": url,
	})
}
