package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

const DefaultContentType = "application/octet-stream"

type Object struct {
	Data        []byte
	ContentType string
}

// ObjectStore is a flat key/value blob store. Put overwrites silently.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
