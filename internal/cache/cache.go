// Package cache holds short-lived response bodies (search pages, facets).
// Every implementation treats backend failures as misses.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string)
}

// SearchPrefix namespaces search results so catalog writes can drop them at once.
const SearchPrefix = "search:"
