package application

import "errors"

// ErrUnknownCacheKey a clear request named a key outside the catalog cache.
var ErrUnknownCacheKey = errors.New("not a catalog cache key")
