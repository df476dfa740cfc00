// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is a local directory holding files.json and the snapshots.
	DataDir string `koanf:"data_dir"`

	// DataURL, when set, serves snapshots over HTTP instead of DataDir.
	DataURL string `koanf:"data_url"`

	// Manifest is the name of the file listing snapshot names.
	Manifest string `koanf:"manifest"`

	// RegistrationFile is the registration sheet, relative to the data source.
	RegistrationFile string `koanf:"registration_file"`

	// Registration sheet header names.
	RegistrationUsernameColumn string `koanf:"registration_username_column"`
	RegistrationFullNameColumn string `koanf:"registration_fullname_column"`
	RegistrationLevelColumn    string `koanf:"registration_level_column"`

	// FetchConcurrency bounds parallel snapshot fetches in one load cycle.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// FetchTimeoutMS bounds one HTTP fetch when DataURL is used.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RateLimitRPS and RateLimitBurst shape per-client request rates.
	// A zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		LogFormat:                  "text",
		Addr:                       ":9080",
		DataDir:                    "data",
		Manifest:                   "files.json",
		RegistrationFile:           "registration.csv",
		RegistrationUsernameColumn: "Username",
		RegistrationFullNameColumn: "Full Name",
		RegistrationLevelColumn:    "Level",
		FetchConcurrency:           runtime.NumCPU(),
		FetchTimeoutMS:             10_000,
		RateLimitRPS:               10,
		RateLimitBurst:             20,
	}
}
