package api

import (
	"golang.org/x/time/rate"

	"github.com/okian/starboard/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimit limits each client IP to rps requests per second with the
// given burst. A non-positive rps turns limiting off.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = NewIPRateLimiter(rate.Limit(rps), max(burst, 1))
	}
}
