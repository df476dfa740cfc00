package repository

import (
	"net/http"
	"time"
)

// Default file names inside a data source.
const (
	DefaultManifest     = "files.json"
	DefaultRegistration = "registration.csv"
	defaultTimeout      = 10 * time.Second
)

type options struct {
	manifest     string
	registration string
	client       *http.Client
	timeout      time.Duration
}

func defaultOptions() options {
	return options{
		manifest:     DefaultManifest,
		registration: DefaultRegistration,
		timeout:      defaultTimeout,
	}
}

// Option applies a configuration option to a source.
type Option func(*options)

// WithManifest sets the manifest file name.
func WithManifest(name string) Option {
	return func(o *options) {
		if name != "" {
			o.manifest = name
		}
	}
}

// WithRegistrationFile sets the registration sheet file name. An empty name
// disables the sheet.
func WithRegistrationFile(name string) Option {
	return func(o *options) {
		o.registration = name
	}
}

// WithHTTPClient sets the client an HTTPSource uses.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithTimeout bounds each HTTP request when no client is given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}
