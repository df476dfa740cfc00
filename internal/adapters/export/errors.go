package export

import "errors"

// Sentinel errors for export rendering.
var (
	ErrRender = errors.New("render export")
	ErrFormat = errors.New("unknown export format")
)
