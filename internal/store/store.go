// Package store wraps the database handle with the queries the app needs.
// A Store is built once at startup and handed to handlers through
// internal.Deps; every call takes the request context.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hopperai/chat-api/internal/model"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for the cleanup job and tests
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user, %w", translate(err))
	}

	return nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.firstUser(ctx, "username = ?", username)
}

func (s *Store) firstUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User

	if err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

// Activate consumes the verification token whose hash is tokenHash. The token
// is cleared in the same conditional update that activates the user, so two
// concurrent attempts can't both succeed.
func (s *Store) Activate(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("verification_token = ?", tokenHash).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenInvalid
			}

			return err
		}

		if user.TokenExpired(now) {
			return ErrTokenExpired
		}

		r := tx.Model(&model.User{}).
			Where("id = ? AND verification_token = ?", user.ID, tokenHash).
			Updates(map[string]any{
				"is_active":                  true,
				"verification_token":         nil,
				"verification_token_expires": nil,
			})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrTokenInvalid
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Active = true
	user.VerificationToken = nil
	user.VerificationTokenExpires = nil

	return &user, nil
}

// ReissueToken replaces the pending verification token of an inactive user
func (s *Store) ReissueToken(ctx context.Context, userID uint, tokenHash string, expires time.Time) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND is_active = ?", userID, false).
		Updates(map[string]any{
			"verification_token":         tokenHash,
			"verification_token_expires": expires,
		})
	if r.Error != nil {
		return fmt.Errorf("failed to reissue token, %w", translate(r.Error))
	}

	if r.RowsAffected == 0 {
		return ErrAlreadyActive
	}

	return nil
}

// ClearExpiredTokens drops verification tokens that can no longer be used and
// returns how many users were touched.
func (s *Store) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("verification_token IS NOT NULL AND verification_token_expires < ?", now).
		Updates(map[string]any{
			"verification_token":         nil,
			"verification_token_expires": nil,
		})

	return r.RowsAffected, r.Error
}

func (s *Store) SetSession(ctx context.Context, userID uint, sessionID string) error {
	return s.updateSession(ctx, userID, &sessionID)
}

func (s *Store) ClearSession(ctx context.Context, userID uint) error {
	return s.updateSession(ctx, userID, nil)
}

func (s *Store) updateSession(ctx context.Context, userID uint, sessionID *string) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("session_id", sessionID)
	if r.Error != nil {
		return fmt.Errorf("failed to update session, %w", translate(r.Error))
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClaimResend records a verification resend for userID. When the previous
// one happened less than cooldown ago nothing is recorded and
// ErrResendCooldown is returned with the time left.
func (s *Store) ClaimResend(ctx context.Context, userID uint, now time.Time, cooldown time.Duration) (time.Duration, error) {
	var wait time.Duration

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rr model.ResendRequest

		err := tx.Where("user_id = ?", userID).First(&rr).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rr = model.ResendRequest{UserID: userID}
		case err != nil:
			return err
		default:
			if next := rr.LastResend.Add(cooldown); now.Before(next) {
				wait = next.Sub(now)
				return ErrResendCooldown
			}
		}

		rr.LastResend = now
		rr.Count++

		return tx.Omit("User").Save(&rr).Error
	})
	if err != nil {
		if errors.Is(err, ErrResendCooldown) {
			return wait, err
		}

		return 0, fmt.Errorf("failed to record resend, %w", translate(err))
	}

	return 0, nil
}

// CreateChat stores a finished exchange. Chats are append-only, there is no
// update or delete counterpart.
func (s *Store) CreateChat(ctx context.Context, c *model.Chat) error {
	if err := s.db.WithContext(ctx).Omit("User").Create(c).Error; err != nil {
		return fmt.Errorf("failed to create chat, %w", translate(err))
	}

	return nil
}

// ChatsByUser returns the newest chats of a user first
func (s *Store) ChatsByUser(ctx context.Context, userID uint, limit int) ([]model.Chat, error) {
	chats := []model.Chat{}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&chats).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats, %w", err)
	}

	return chats, nil
}
