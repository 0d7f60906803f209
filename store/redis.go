package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Yapcheekian/shrt/models"
	"github.com/go-redis/redis/v8"
)

const shortLinkPrefix = "shortlink:"

// RedisStore keeps each short link as a JSON value under shortlink:<code>.
// Keys never expire.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func shortLinkKey(shortCode string) string {
	return shortLinkPrefix + shortCode
}

func (s *RedisStore) Exists(ctx context.Context, shortCode string) (bool, error) {
	n, err := s.client.Exists(ctx, shortLinkKey(shortCode)).Result()
	if err != nil {
		return false, fmt.Errorf("check short code %q: %w", shortCode, err)
	}

	return n > 0, nil
}

// Insert uses SETNX so that only the first writer of a code wins.
func (s *RedisStore) Insert(ctx context.Context, link models.ShortLink) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal short link: %w", err)
	}

	ok, err := s.client.SetNX(ctx, shortLinkKey(link.ShortCode), string(payload), 0).Result()
	if err != nil {
		return fmt.Errorf("insert short link %q: %w", link.ShortCode, err)
	}
	if !ok {
		return ErrDuplicateKey
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, shortCode string) (models.ShortLink, error) {
	var link models.ShortLink

	payload, err := s.client.Get(ctx, shortLinkKey(shortCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return link, ErrNotFound
	}
	if err != nil {
		return link, fmt.Errorf("get short link %q: %w", shortCode, err)
	}

	if err := json.Unmarshal(payload, &link); err != nil {
		return link, fmt.Errorf("unmarshal short link %q: %w", shortCode, err)
	}

	return link, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
