package service

import (
	"context"
	"fmt"
	"time"

	"hopperai/chat-api/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartTokenCleanup clears expired verification tokens on the given cron
// schedule (e.g. "@daily"). Users whose token was cleared have to request a
// new one. The returned function stops the scheduler.
func StartTokenCleanup(schedule string, s *store.Store) (stop func(), err error) {
	c := cron.New()

	_, err = c.AddFunc(schedule, func() { CleanupTokens(context.Background(), s) })
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", schedule, err)
	}

	c.Start()
	zap.L().Debug("Token cleanup attached", zap.String("schedule", schedule))

	return func() { <-c.Stop().Done() }, nil
}

// CleanupTokens runs one cleanup pass
func CleanupTokens(ctx context.Context, s *store.Store) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.ClearExpiredTokens(ctx, time.Now())
	if err != nil {
		zap.L().Error("Failed to clean up expired tokens", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired tokens", zap.Int64("users", n))
	}
}
