package user

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/security"
	"hopperai/chat-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resendBody struct {
	Email string `json:"email"`
}

// UserResendVerification issues a fresh token for an inactive account,
// replacing any pending one, and mails it
func UserResendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    err.Error(),
			"requestID": requestID,
		})
		return
	}

	ctx := c.Request.Context()

	user, err := d.Store.UserByEmail(ctx, data.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"detail":    "User not found",
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

	if user.Active {
		c.JSON(http.StatusConflict, gin.H{
			"detail":    "Account is already verified",
			"requestID": requestID,
		})
		return
	}

	if d.ResendCooldown > 0 {
		wait, err := d.Store.ClaimResend(ctx, user.ID, time.Now(), d.ResendCooldown)
		if err != nil {
			if errors.Is(err, store.ErrResendCooldown) {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"detail":    "Please wait before requesting another verification email",
					"requestID": requestID,
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"detail":    "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to record resend", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	token, err := security.MakeVerificationToken(security.VerificationTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Store.ReissueToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrAlreadyActive) {
			c.JSON(http.StatusConflict, gin.H{
				"detail":    "Account is already verified",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reissue verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !d.Mailer.SendVerificationEmail(user.Email, d.Mailer.VerificationLink(token.Raw)) {
		c.JSON(http.StatusBadGateway, gin.H{
			"detail":    "Failed to send verification email",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification email sent",
	})
}
