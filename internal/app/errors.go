package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoSource   = errors.New("no snapshot source configured")
)
