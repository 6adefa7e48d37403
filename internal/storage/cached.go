package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxCachedBytes = 1 << 20

// CachedStore is a read-through LRU in front of another store. Objects larger
// than MaxObjectBytes are never cached.
type CachedStore struct {
	inner ObjectStore
	cache *lru.Cache[string, Object]

	MaxObjectBytes int
}

func NewCachedStore(inner ObjectStore, entries int) (*CachedStore, error) {
	c, err := lru.New[string, Object](entries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: c, MaxObjectBytes: defaultMaxCachedBytes}, nil
}

func (s *CachedStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.inner.Put(ctx, key, data, contentType); err != nil {
		return err
	}
	s.cache.Remove(key)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, key string) (*Object, error) {
	if obj, ok := s.cache.Get(key); ok {
		return &Object{Data: append([]byte(nil), obj.Data...), ContentType: obj.ContentType}, nil
	}

	obj, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(obj.Data) <= s.MaxObjectBytes {
		s.cache.Add(key, Object{Data: append([]byte(nil), obj.Data...), ContentType: obj.ContentType})
	}
	return obj, nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return s.inner.Delete(ctx, key)
}
