package snapshot

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrSnapshot marks a snapshot that could not be fetched or decoded. It
	// fails the whole load cycle.
	ErrSnapshot = errors.New("load snapshot")

	// ErrManifest marks an unreadable manifest. The loader treats it as "no
	// files"; sources return it so callers can tell it apart.
	ErrManifest = errors.New("load manifest")
)
