package validators

import (
	"errors"
	"regexp"
)

var (
	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameInvalid = errors.New("username must be 3-32 characters of letters, digits, '.', '_' or '-'")
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if !usernameRe.MatchString(u) {
		return ErrUsernameInvalid
	}

	return nil
}
