package store

import (
	"context"
	"errors"

	"github.com/Yapcheekian/shrt/models"
)

var (
	ErrNotFound     = errors.New("short link not found")
	ErrDuplicateKey = errors.New("short code already taken")
)

// Store persists short links behind a unique short code index.
//
// Insert must be atomic with respect to the uniqueness of ShortCode: when two
// callers race on the same code exactly one succeeds and the other gets
// ErrDuplicateKey.
type Store interface {
	Exists(ctx context.Context, shortCode string) (bool, error)
	Insert(ctx context.Context, link models.ShortLink) error
	Get(ctx context.Context, shortCode string) (models.ShortLink, error)
}

// Pinger is implemented by stores that can report backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
