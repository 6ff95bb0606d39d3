package validators

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrPromptTooLong = errors.New("text is too long")

// PromptValidator checks text forwarded upstream. Empty text is allowed,
// the upstream API decides what to do with it.
func PromptValidator(s string, maxRunes int) error {
	if n := utf8.RuneCountInString(s); n > maxRunes {
		return fmt.Errorf("%w, %d characters (max %d)", ErrPromptTooLong, n, maxRunes)
	}

	return nil
}
