package internal

import (
	"context"
	"time"

	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/security"
)

// Completer answers a single chat message. Implemented by *gateway.Completion
type Completer interface {
	Complete(ctx context.Context, content string) (string, error)
}

// ImageGenerator turns a prompt into an image URL. Implemented by *gateway.Images
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers verification links. Implemented by *service.Mailer
type Notifier interface {
	VerificationLink(token string) string
	SendVerificationEmail(to, link string) bool
}

type Deps struct {
	Store      *store.Store
	Argon      *security.ArgonHash
	Completion Completer
	Images     ImageGenerator
	Mailer     Notifier

	JWTSecret        string
	SessionTTL       time.Duration
	SSLEnabled       bool
	ResendCooldown   time.Duration // 0 disables
	MaxContentLength int
	HistoryLimit     int
}
