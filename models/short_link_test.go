package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateShortCode(t *testing.T) {
	tt := []struct {
		desc    string
		code    string
		wantErr bool
	}{
		{desc: "valid short code", code: "abc123"},
		{desc: "mixed case", code: "AbC9zZ"},
		{desc: "too short", code: "abc", wantErr: true},
		{desc: "five characters", code: "12345", wantErr: true},
		{desc: "too long", code: "abcdefg", wantErr: true},
		{desc: "contains slash", code: "abc/12", wantErr: true},
		{desc: "contains dash", code: "abc-12", wantErr: true},
		{desc: "non ascii letter", code: "abcdé", wantErr: true},
		{desc: "empty", code: "", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			err := ValidateShortCode(tc.code, ShortCodeLength)
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidShortCode))
				var scErr *ShortCodeError
				assert.True(t, errors.As(err, &scErr))
				assert.NotEmpty(t, scErr.Reason)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestShortLinkString(t *testing.T) {
	link := ShortLink{
		ID:          1,
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/some/long/url",
		CreatedAt:   time.Now(),
	}
	assert.Equal(t, "abc123 -> https://example.com/some/long/url", link.String())
}

func TestValidateShortCodeReasons(t *testing.T) {
	err := ValidateShortCode("abc", ShortCodeLength)
	assert.EqualError(t, err, "invalid short code: Ensure this field has exactly 6 characters.")

	err = ValidateShortCode("abc/12", ShortCodeLength)
	assert.EqualError(t, err, "invalid short code: Short code must contain only letters and numbers.")
}
