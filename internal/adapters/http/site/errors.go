package site

import "errors"

// Error constants.
var (
	ErrRender = errors.New("leaderboard page render failed")
)
