package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Yapcheekian/shrt/models"
	"github.com/go-redis/redis/v8"
)

const cachePrefix = "cache:shortlink:"

// CachedStore puts a redis read-through cache in front of another Store.
// The backing store stays the only arbiter of uniqueness; cache failures are
// logged and otherwise ignored.
type CachedStore struct {
	backing Store
	cache   redis.Cmdable
	ttl     time.Duration
}

func NewCachedStore(backing Store, cache redis.Cmdable, ttl time.Duration) *CachedStore {
	return &CachedStore{
		backing: backing,
		cache:   cache,
		ttl:     ttl,
	}
}

func cacheKey(shortCode string) string {
	return cachePrefix + shortCode
}

// Exists trusts a cache hit since links are never deleted. A miss falls
// through to the backing store.
func (s *CachedStore) Exists(ctx context.Context, shortCode string) (bool, error) {
	n, err := s.cache.Exists(ctx, cacheKey(shortCode)).Result()
	if err != nil {
		log.Println("cache Exists failed: ", err)
	} else if n > 0 {
		return true, nil
	}

	return s.backing.Exists(ctx, shortCode)
}

func (s *CachedStore) Insert(ctx context.Context, link models.ShortLink) error {
	if err := s.backing.Insert(ctx, link); err != nil {
		return err
	}

	s.set(ctx, link)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, shortCode string) (models.ShortLink, error) {
	payload, err := s.cache.Get(ctx, cacheKey(shortCode)).Bytes()
	switch {
	case err == nil:
		var link models.ShortLink
		if err := json.Unmarshal(payload, &link); err == nil {
			return link, nil
		}
		log.Println("cache payload unreadable, ignoring: ", shortCode)
	case !errors.Is(err, redis.Nil):
		log.Println("cache Get failed: ", err)
	}

	link, err := s.backing.Get(ctx, shortCode)
	if err != nil {
		return link, err
	}

	s.set(ctx, link)
	return link, nil
}

func (s *CachedStore) Ping(ctx context.Context) error {
	if p, ok := s.backing.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}

	return s.cache.Ping(ctx).Err()
}

func (s *CachedStore) set(ctx context.Context, link models.ShortLink) {
	payload, err := json.Marshal(link)
	if err != nil {
		log.Println("cache marshal failed: ", err)
		return
	}

	if err := s.cache.Set(ctx, cacheKey(link.ShortCode), string(payload), s.ttl).Err(); err != nil {
		log.Println("cache Set failed: ", err)
	}
}
