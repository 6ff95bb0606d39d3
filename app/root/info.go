// Package root contains the service-level endpoints that don't belong to a
// resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

var features = []string{
	"Natural Language Chat with OpenRouter AI",
	"Image Generation with DALL-E",
	"Real-time Responses",
	"Modern UI/UX",
}

func Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "HopperAI",
		"version":     Version,
		"description": "Welcome to HopperAI - Your Advanced AI Assistant",
		"features":    features,
		"status":      "operational",
	})
}
