package storage

import (
	"context"
	"io"
)

// Storage abstracts where uploaded car photos and payment proofs are kept.
// Paths are slash separated and relative to the backend's root.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Get returns ErrNotExist (wrapped) when nothing is stored at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

var _ Storage = (*LocalStorage)(nil)
