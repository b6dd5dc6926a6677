// Package storage writes uploaded media either to local disk or to an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

type Store interface {
	// Put writes body under key and returns the public URL.
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

var ErrBadKey = errors.New("storage: invalid key")

// cleanKey rejects absolute paths and traversal and normalizes separators.
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, `\`, "/")
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\x00") {
		return "", ErrBadKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrBadKey
	}
	return clean, nil
}
