package store

import (
	"context"
	"sync"

	"github.com/Yapcheekian/shrt/models"
)

// memStore is a mutex guarded Store used as the backing store in cache tests.
type memStore struct {
	mu          sync.Mutex
	links       map[string]models.ShortLink
	existsCalls int
	getCalls    int
}

func newMemStore() *memStore {
	return &memStore{links: make(map[string]models.ShortLink)}
}

func (m *memStore) Exists(_ context.Context, shortCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	_, ok := m.links[shortCode]
	return ok, nil
}

func (m *memStore) Insert(_ context.Context, link models.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ShortCode]; ok {
		return ErrDuplicateKey
	}
	m.links[link.ShortCode] = link
	return nil
}

func (m *memStore) Get(_ context.Context, shortCode string) (models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	link, ok := m.links[shortCode]
	if !ok {
		return models.ShortLink{}, ErrNotFound
	}
	return link, nil
}
