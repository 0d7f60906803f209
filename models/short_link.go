package models

import (
	"errors"
	"fmt"
	"time"
)

// ShortCodeLength is the length of every allocated short code.
const ShortCodeLength = 6

var ErrInvalidShortCode = errors.New("invalid short code")

// ShortCodeError describes why a short code was rejected. It matches
// ErrInvalidShortCode with errors.Is.
type ShortCodeError struct {
	Reason string
}

func (e *ShortCodeError) Error() string {
	return "invalid short code: " + e.Reason
}

func (e *ShortCodeError) Is(target error) bool {
	return target == ErrInvalidShortCode
}

// ShortLink maps a short code to the URL it was allocated for.
// Records are written once and never updated.
type ShortLink struct {
	ID          int64     `db:"id" json:"id"`
	ShortCode   string    `db:"short_code" json:"short_code"`
	OriginalURL string    `db:"original_url" json:"original_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (l ShortLink) String() string {
	return fmt.Sprintf("%s -> %s", l.ShortCode, l.OriginalURL)
}

// ValidateShortCode reports whether code has exactly length characters of [A-Za-z0-9].
// The returned error is a *ShortCodeError.
func ValidateShortCode(code string, length int) error {
	if len(code) != length {
		return &ShortCodeError{Reason: fmt.Sprintf("Ensure this field has exactly %d characters.", length)}
	}

	for i := 0; i < len(code); i++ {
		if !isAlphanumeric(code[i]) {
			return &ShortCodeError{Reason: "Short code must contain only letters and numbers."}
		}
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
