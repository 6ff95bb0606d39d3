// Package model defines database models
package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:hashed_password;not null" json:"-"`
	Active       bool      `gorm:"column:is_active;default:false" json:"is_active"` // Email verified
	Admin        bool      `gorm:"column:is_admin;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`

	// Set on login, cleared on logout. Tokens carrying another session ID are rejected
	SessionID *string `gorm:"uniqueIndex" json:"-"`

	// SHA-256 of the mailed token, the raw token is never stored
	VerificationToken        *string    `gorm:"uniqueIndex" json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`
}

// TokenExpired reports whether the pending verification token can no longer be used
func (u *User) TokenExpired(now time.Time) bool {
	return u.VerificationTokenExpires == nil || !now.Before(*u.VerificationTokenExpires)
}
