package domain

import "errors"

var (
	// ErrRemoteFetch the remote catalog could not produce a usable snapshot.
	ErrRemoteFetch = errors.New("remote catalog fetch failed")
	// ErrCacheMiss neither cache tier holds a snapshot and no refresh succeeded.
	ErrCacheMiss = errors.New("catalog snapshot unavailable")
	// ErrRecordNotFound none of the candidate SKUs is priced by the catalog.
	ErrRecordNotFound = errors.New("catalog record not found")
)
