// Package storage archives generated proofs on local disk or in an S3 compatible bucket.
package storage

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/config"
)

// Storage is an archive for generated artifacts.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Health(ctx context.Context) error
}

// New returns the backend selected by COLORMUSE_STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Storage, error) {
	if cfg.IsS3Storage() {
		return NewS3Storage(ctx, cfg, log)
	}
	return NewLocalStorage(cfg, log)
}
