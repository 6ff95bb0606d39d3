package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

const tokenSize = 32

// VerificationTTL is how long a mailed verification link stays valid
const VerificationTTL = 24 * time.Hour

// VerificationToken is a freshly issued email verification token. Raw goes
// into the mail, Hash goes into the database.
type VerificationToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

func MakeVerificationToken(ttl time.Duration) (*VerificationToken, error) {
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	b := make([]byte, tokenSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	raw := hex.EncodeToString(b)

	return &VerificationToken{
		Raw:       raw,
		Hash:      HashToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashToken returns the value stored for a raw verification token
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
