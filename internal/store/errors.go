package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrUserMissing    = errors.New("referenced user does not exist")
	ErrTokenInvalid   = errors.New("verification token invalid")
	ErrTokenExpired   = errors.New("verification token expired")
	ErrAlreadyActive  = errors.New("account already verified")
	ErrResendCooldown = errors.New("verification email re-sent too recently")
)

// translate maps driver errors onto the package sentinels. TranslateError is
// enabled on the connection; the message checks cover drivers that don't
// implement it.
func translate(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return errors.Join(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"):
		return errors.Join(ErrUserMissing, err)
	}

	return err
}
