package snapshot

import (
	"github.com/okian/starboard/pkg/logger"
)

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds how many snapshots are fetched at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}
