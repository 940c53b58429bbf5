package feed

import "errors"

var (
	// ErrFetch marks a failed content fetch.
	ErrFetch = errors.New("feed fetch failed")
	// ErrFreshnessUnavailable marks a failed "last updated" lookup. The gate
	// absorbs it and trusts the cache.
	ErrFreshnessUnavailable = errors.New("feed freshness unavailable")

	ErrInvalidPost   = errors.New("invalid post")
	ErrInvalidPatron = errors.New("invalid patron")
	ErrNotFound      = errors.New("not found")
)
