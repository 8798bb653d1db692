// Package isbn normalizes raw scanned or typed text into canonical
// ISBN-10/13 identifiers.
package isbn

import (
	"errors"
	"strings"
)

// ErrInvalidIdentifier is returned when input cannot be reduced to a
// 10 or 13 character ISBN.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Normalize cleans a raw identifier into canonical ISBN form: uppercase,
// digits and X only, length exactly 10 or 13. The check digit is not
// validated; providers return "not found" for well-formed non-ISBNs.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return "", ErrInvalidIdentifier
	}
	return cleaned, nil
}

// Valid reports whether raw normalizes to a canonical identifier.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
