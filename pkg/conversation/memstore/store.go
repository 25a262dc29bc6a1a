// Package memstore is a non-durable conversation.Store over go-cache.
// It exists for tests and local development without a data directory;
// production deployments use badgerstore or gormstore.
package memstore

import (
	"context"

	"github.com/patrickmn/go-cache"

	"whatsapp-ai-bridge/pkg/conversation"
)

type Store struct {
	cache *cache.Cache
}

var _ conversation.Store = (*Store)(nil)

// New creates an in-memory store. Entries never expire; the cache is used
// as a concurrent map, not for TTL eviction.
func New() *Store {
	return &Store{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(ctx context.Context, userID string) (conversation.History, bool, error) {
	if x, found := s.cache.Get(userID); found {
		return x.(conversation.History), true, nil
	}
	return nil, false, nil
}

func (s *Store) Put(ctx context.Context, userID string, msgs conversation.History) error {
	if msgs == nil {
		msgs = conversation.History{}
	}
	s.cache.Set(userID, msgs, cache.NoExpiration)
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.Put(ctx, userID, conversation.History{})
}
