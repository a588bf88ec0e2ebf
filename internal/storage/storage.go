// Package storage stores exported reports on the local filesystem or S3.
package storage

import (
	"context"
	"errors"
	"fmt"

	"buildboard/internal/config"
)

// ErrNotFound is returned when a path does not exist.
var ErrNotFound = errors.New("not found")

// Storage is a flat blob store addressed by slash-separated paths.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// New returns the storage selected by env.
func New(ctx context.Context, env config.ExportEnv) (Storage, error) {
	switch env.Type {
	case config.ExportLocal:
		return NewLocalStorage(env.BaseDir)
	case config.ExportS3:
		if env.S3Bucket == "" {
			return nil, errors.New("BUILDBOARD_S3_BUCKET is required for s3 export")
		}
		return NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
	default:
		return nil, fmt.Errorf("unknown export type: %s", env.Type)
	}
}
