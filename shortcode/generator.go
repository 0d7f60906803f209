package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/mattheath/base62"
)

const (
	// Alphabet is the set of characters a short code is drawn from.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// MaxLength is the longest code whose keyspace (62^n) still fits in an int64.
	MaxLength = 10

	zeroDigit = "0"
)

var ErrInvalidLength = errors.New("short code length out of range")

// randomInt63n returns a uniform integer in [0, n).
// It will be monkey patched during testing to produce predictable codes.
var randomInt63n = func(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

var base62Encode = base62.EncodeInt64

// Generate returns a random code of exactly length characters from Alphabet.
//
// A single integer is drawn uniformly from [0, 62^length) and base62 encoded,
// left padded with the zero digit. The mapping between integers and padded
// strings is a bijection, so every character is independent and uniform.
// Generate does not check for collisions; that is the caller's job.
func Generate(length int) (string, error) {
	if length < 1 || length > MaxLength {
		return "", fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidLength, length, MaxLength)
	}

	n, err := randomInt63n(Keyspace(length))
	if err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}

	code := base62Encode(n)
	if len(code) < length {
		code = strings.Repeat(zeroDigit, length-len(code)) + code
	}

	return code, nil
}

// Keyspace returns the number of distinct codes of the given length.
func Keyspace(length int) int64 {
	size := int64(1)
	for i := 0; i < length; i++ {
		size *= int64(len(Alphabet))
	}
	return size
}
