package allocator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Yapcheekian/shrt/models"
	"github.com/Yapcheekian/shrt/shortcode"
	"github.com/Yapcheekian/shrt/store"
)

const DefaultMaxAttempts = 3

var ErrAllocationExhausted = errors.New("failed to allocate a unique short code")

// Allocator pairs freshly generated short codes with URLs in a Store.
//
// It holds no locks: correctness under concurrent callers, including callers
// in other processes, rests on the store rejecting a second insert of the
// same code.
type Allocator struct {
	store       store.Store
	codeLength  int
	maxAttempts int
	generate    func(length int) (string, error)
	newID       func() (int64, error)
	now         func() time.Time
}

type Option func(*Allocator)

func WithMaxAttempts(n int) Option {
	return func(a *Allocator) { a.maxAttempts = n }
}

func WithCodeLength(n int) Option {
	return func(a *Allocator) { a.codeLength = n }
}

func WithGenerator(fn func(length int) (string, error)) Option {
	return func(a *Allocator) { a.generate = fn }
}

func WithIDGenerator(fn func() (int64, error)) Option {
	return func(a *Allocator) { a.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(a *Allocator) { a.now = fn }
}

// New builds an Allocator. Without WithIDGenerator it uses snowflake node 0.
func New(s store.Store, opts ...Option) (*Allocator, error) {
	a := &Allocator{
		store:       s,
		codeLength:  models.ShortCodeLength,
		maxAttempts: DefaultMaxAttempts,
		generate:    shortcode.Generate,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1, got %d", a.maxAttempts)
	}
	if a.codeLength < 1 || a.codeLength > shortcode.MaxLength {
		return nil, fmt.Errorf("code length must be in 1..%d, got %d", shortcode.MaxLength, a.codeLength)
	}
	if a.newID == nil {
		ids, err := NewSnowflakeIDs(0)
		if err != nil {
			return nil, err
		}
		a.newID = ids
	}

	return a, nil
}

func (a *Allocator) CodeLength() int {
	return a.codeLength
}

// Allocate stores originalURL under a new unique short code.
//
// Each attempt generates a candidate, skips it if the store already has it,
// and otherwise inserts. A duplicate key on insert means another writer took
// the code first and counts as a failed attempt. When every attempt fails
// Allocate returns ErrAllocationExhausted. Any other store error is returned
// immediately.
func (a *Allocator) Allocate(ctx context.Context, originalURL string) (models.ShortLink, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.ShortLink{}, err
		}

		code, err := a.generate(a.codeLength)
		if err != nil {
			return models.ShortLink{}, fmt.Errorf("generate short code: %w", err)
		}

		taken, err := a.store.Exists(ctx, code)
		if err != nil {
			return models.ShortLink{}, err
		}
		if taken {
			log.Printf("short code %s already taken (attempt %d/%d)", code, attempt, a.maxAttempts)
			continue
		}

		id, err := a.newID()
		if err != nil {
			return models.ShortLink{}, fmt.Errorf("generate id: %w", err)
		}

		link := models.ShortLink{
			ID:          id,
			ShortCode:   code,
			OriginalURL: originalURL,
			CreatedAt:   a.now().UTC(),
		}

		err = a.store.Insert(ctx, link)
		if errors.Is(err, store.ErrDuplicateKey) {
			log.Printf("short code %s lost insert race (attempt %d/%d)", code, attempt, a.maxAttempts)
			continue
		}
		if err != nil {
			return models.ShortLink{}, err
		}

		return link, nil
	}

	return models.ShortLink{}, fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, a.maxAttempts)
}

// Resolve looks up the link for shortCode. Malformed codes fail with
// models.ErrInvalidShortCode without reaching the store.
func (a *Allocator) Resolve(ctx context.Context, shortCode string) (models.ShortLink, error) {
	if err := models.ValidateShortCode(shortCode, a.codeLength); err != nil {
		return models.ShortLink{}, err
	}

	return a.store.Get(ctx, shortCode)
}

// Ping reports whether the underlying store is reachable. Stores that cannot
// be pinged are assumed healthy.
func (a *Allocator) Ping(ctx context.Context) error {
	if p, ok := a.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
