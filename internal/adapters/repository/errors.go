package repository

import "errors"

// Sentinel kinds for snapshot source errors.
var (
	ErrNotFound    = errors.New("file not found")
	ErrStatus      = errors.New("status")
	ErrInvalidName = errors.New("invalid file name")
)
