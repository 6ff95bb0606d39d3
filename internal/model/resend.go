package model

import "time"

// ResendRequest tracks when a verification email was last re-sent to a user
type ResendRequest struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	UserID     uint      `gorm:"uniqueIndex;not null"`
	LastResend time.Time `gorm:"not null"`
	Count      int       `gorm:"not null;default:0"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
