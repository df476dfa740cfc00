package registration

import "errors"

// Sentinel error kinds for this package.
var (
	ErrParse = errors.New("parse registration sheet")
)
