package fetcher

import "errors"

// Sentinel errors for the downloader.
var (
	ErrNoSession = errors.New("session token not found; pass --session, set AOC_SESSION or add it to " + ConfigFile)
	ErrYearRange = errors.New("invalid year range")
	ErrStatus    = errors.New("unexpected status")
	ErrNotJSON   = errors.New("response is not JSON")
)
