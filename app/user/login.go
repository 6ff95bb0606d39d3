package user

import (
	"errors"
	"net/http"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/middleware"
	"hopperai/chat-api/pkg/security"
	"hopperai/chat-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "Email field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	ctx := c.Request.Context()

	user, err := d.Store.UserByEmail(ctx, data.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"detail":    "Invalid credentials",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := d.Argon.Verify(data.Password, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail":    "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{
			"detail":    "Please verify your account before logging in",
			"requestID": requestID,
		})
		return
	}

	sessionID, err := util.NewID(21)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate session ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	authToken, err := security.SignSession(d.JWTSecret, user.ID, sessionID, d.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate JWT auth token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Store.SetSession(ctx, user.ID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, authToken, int(d.SessionTTL.Seconds()), "/", "", d.SSLEnabled, true)
	c.JSON(http.StatusOK, gin.H{
		"access_token": authToken,
		"token_type":   "bearer",
	})
}
