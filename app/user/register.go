// Package user contains the account endpoints: registration, email
// verification and sessions
package user

import (
	"errors"
	"net/http"

	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/model"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/security"
	"hopperai/chat-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRegister creates an inactive account and mails a verification link.
// The account is kept when the mail can't be delivered, verification_sent
// tells the client to offer a resend.
func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	for _, err := range []error{
		validators.EmailValidator(data.Email),
		validators.UsernameValidator(data.Username),
		validators.PasswordValidator(data.Password),
	} {
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail":    err.Error(),
				"requestID": requestID,
			})
			return
		}
	}

	ctx := c.Request.Context()

	if _, err := d.Store.UserByEmail(ctx, data.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"detail":    "This email is already registered. Please login or use a different email",
			"requestID": requestID,
		})
		return
	}

	if _, err := d.Store.UserByUsername(ctx, data.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"detail":    "This username is already taken",
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.Hash(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
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

	user := &model.User{
		Email:                    data.Email,
		Username:                 data.Username,
		PasswordHash:             hash,
		VerificationToken:        &token.Hash,
		VerificationTokenExpires: &token.ExpiresAt,
	}

	if err := d.Store.CreateUser(ctx, user); err != nil {
		// Lost a race against another registration with the same email or username
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"detail":    "Email or username already registered",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":    "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	sent := d.Mailer.SendVerificationEmail(user.Email, d.Mailer.VerificationLink(token.Raw))
	if !sent {
		zap.L().Warn("User registered without verification email", zap.Uint("userID", user.ID), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":              user,
		"verification_sent": sent,
	})
}
