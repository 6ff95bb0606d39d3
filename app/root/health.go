package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness only. It never probes the database, the upstream
// API or the mail server.
func Health(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "HopperAI is running smoothly",
	})
}
