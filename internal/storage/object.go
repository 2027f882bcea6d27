/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage writes report files to the local filesystem or to
// S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidURL is returned for malformed s3:// destinations.
var ErrInvalidURL = errors.New("invalid s3 url")

// ObjectStore abstracts object storage operations.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q needs a bucket and an object key", ErrInvalidURL, raw)
	}
	return bucket, key, nil
}

// IsS3URL reports whether dest names an object in S3.
func IsS3URL(dest string) bool {
	return strings.HasPrefix(dest, "s3://")
}

// ForDestination returns the store and key for an export destination: an
// s3:// URL or a local path.
func ForDestination(ctx context.Context, dest string, cfg S3Config, logger zerolog.Logger) (ObjectStore, string, error) {
	if !IsS3URL(dest) {
		return NewFilesystemStore("", logger), dest, nil
	}
	bucket, key, err := ParseS3URL(dest)
	if err != nil {
		return nil, "", err
	}
	cfg.Bucket = bucket
	store, err := NewS3Store(ctx, cfg, logger)
	if err != nil {
		return nil, "", err
	}
	return store, key, nil
}
