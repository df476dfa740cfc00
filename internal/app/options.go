package service

import (
	"github.com/okian/starboard/internal/adapters/repository"
	"github.com/okian/starboard/internal/domain/registration"
	"github.com/okian/starboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where snapshots and the registration sheet come from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRegistrationColumns sets the registration sheet header names. Blank
// names keep the defaults.
func WithRegistrationColumns(cols registration.Columns) Option {
	return func(s *Service) {
		if cols.Username != "" {
			s.columns.Username = cols.Username
		}
		if cols.FullName != "" {
			s.columns.FullName = cols.FullName
		}
		if cols.Level != "" {
			s.columns.Level = cols.Level
		}
	}
}

// WithFetchConcurrency bounds parallel snapshot fetches per load cycle.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}
