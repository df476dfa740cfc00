// Package fetcher downloads yearly private leaderboard snapshots from the
// event site into a data directory and keeps its manifest current.
package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultBaseURL = "https://adventofcode.com"
	DefaultBoard   = "3158126"
	DefaultDir     = "data"
	DefaultRate    = 1.0
	DefaultTimeout = 30 * time.Second
	DefaultWorkers = 2
	FirstYear      = 2015
	ManifestName   = "files.json"
	ConfigFile     = "aoc_leaderboard_config.json"
	SessionEnv     = "AOC_SESSION"
)

// Config holds one download run's settings.
type Config struct {
	BaseURL string        // event site root
	Session string        // value of the session cookie
	Board   string        // private leaderboard id
	Dir     string        // where {year}.json and the manifest go
	From    int           // first year, inclusive
	To      int           // last year, inclusive
	Rate    float64       // requests per second
	Timeout time.Duration // per request
	Workers int           // concurrent downloads
}

// Defaults returns a Config covering every event year up to now.
func Defaults() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Board:   DefaultBoard,
		Dir:     DefaultDir,
		From:    FirstYear,
		To:      LatestYear(time.Now()),
		Rate:    DefaultRate,
		Timeout: DefaultTimeout,
		Workers: DefaultWorkers,
	}
}

// LatestYear is the most recent event year at now. Events start in
// December, so before then the previous year is the latest.
func LatestYear(now time.Time) int {
	now = now.UTC()
	if now.Month() < time.December {
		return now.Year() - 1
	}
	return now.Year()
}

// Validate checks the year range and required fields.
func (c Config) Validate() error {
	switch {
	case c.From < FirstYear || c.To < c.From:
		return fmt.Errorf("%w: %d..%d", ErrYearRange, c.From, c.To)
	case strings.TrimSpace(c.Session) == "":
		return ErrNoSession
	case strings.TrimSpace(c.Board) == "":
		return errors.New("board id must not be empty")
	case strings.TrimSpace(c.Dir) == "":
		return errors.New("dir must not be empty")
	}
	return nil
}

// Years lists the configured years in order.
func (c Config) Years() []int {
	out := make([]int, 0, c.To-c.From+1)
	for y := c.From; y <= c.To; y++ {
		out = append(out, y)
	}
	return out
}

// ResolveSession picks the session token: the flag value first, then the
// environment, then the "session" key of the JSON config file.
func ResolveSession(flag string, lookupEnv func(string) (string, bool), configPath string) (string, error) {
	if s := strings.TrimSpace(flag); s != "" {
		return s, nil
	}
	if lookupEnv != nil {
		if s, ok := lookupEnv(SessionEnv); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
	}
	raw, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", configPath, err)
	}
	var cfg struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return "", fmt.Errorf("parse %s: %w", configPath, err)
	}
	if strings.TrimSpace(cfg.Session) == "" {
		return "", ErrNoSession
	}
	return strings.TrimSpace(cfg.Session), nil
}
