package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/starboard/pkg/logger"
	"github.com/okian/starboard/pkg/metrics"
)

// File permission constants.
const (
	dirPermission  = 0o750
	filePermission = 0o644
)

// maxBody caps one snapshot download.
const maxBody = 32 << 20

var yearFile = regexp.MustCompile(`^\d{4}\.json$`)

// Result is the outcome of downloading one year.
type Result struct {
	Year     int
	Path     string
	Bytes    int64
	Status   int
	Duration time.Duration
	Err      error
}

// OK reports whether the year was saved.
func (r Result) OK() bool { return r.Err == nil }

// Report collects every year's result in year order plus the rewritten
// manifest.
type Report struct {
	Results  []Result
	Manifest []string
}

// Failed counts years that were not saved.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Fetcher downloads snapshots with paced, bounded concurrency.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithLogger sets the fetcher's logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New validates cfg and returns a Fetcher.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	f := &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("fetcher")
	}
	return f, nil
}

// URL is where a year's snapshot is downloaded from.
func (f *Fetcher) URL(year int) string {
	return fmt.Sprintf("%s/%d/leaderboard/private/view/%s.json", f.cfg.BaseURL, year, f.cfg.Board)
}

// Run downloads every configured year and rewrites the manifest. A failed
// year is reported in the result and does not stop the others; only a
// cancelled context or an unwritable directory fails the run.
func (f *Fetcher) Run(ctx context.Context) (Report, error) {
	if err := os.MkdirAll(f.cfg.Dir, dirPermission); err != nil {
		return Report{}, fmt.Errorf("create %s: %w", f.cfg.Dir, err)
	}

	years := f.cfg.Years()
	results := make([]Result, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i, year := range years {
		g.Go(func() error {
			if err := f.limiter.Wait(gctx); err != nil {
				return err
			}
			results[i] = f.fetch(gctx, year)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{Results: results}, fmt.Errorf("download cancelled: %w", err)
	}

	manifest, err := WriteManifest(f.cfg.Dir)
	if err != nil {
		return Report{Results: results}, err
	}
	return Report{Results: results, Manifest: manifest}, nil
}

func (f *Fetcher) fetch(ctx context.Context, year int) (res Result) {
	start := time.Now()
	res.Year = year
	defer func() {
		res.Duration = time.Since(start)
	}()

	body, status, err := f.get(ctx, f.URL(year))
	res.Status = status
	if err == nil {
		res.Path = filepath.Join(f.cfg.Dir, strconv.Itoa(year)+".json")
		err = writeFileAtomic(res.Path, body)
	}
	if err != nil {
		res.Err = err
		metrics.RecordDownload(metrics.OutcomeError)
		f.logger.Warn(ctx, "snapshot download failed",
			logger.Int("year", year), logger.Int("status", status), logger.Error(err))
		return res
	}
	res.Bytes = int64(len(body))
	metrics.RecordDownload(metrics.OutcomeOK)
	f.logger.Info(ctx, "snapshot saved",
		logger.Int("year", year), logger.String("path", res.Path), logger.Int64("bytes", res.Bytes))
	return res
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: f.cfg.Session})
	req.Header.Set("User-Agent", "github.com/okian/starboard fetcher")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Debug(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d - %s", ErrStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	// A stale session is answered with the login page, not an error status.
	if !json.Valid(body) {
		return nil, resp.StatusCode, ErrNotJSON
	}
	return body, resp.StatusCode, nil
}

// WriteManifest lists every {year}.json file in dir, sorted, into the
// manifest file and returns the list.
func WriteManifest(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && yearFile.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	raw, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, ManifestName), append(raw, '\n')); err != nil {
		return nil, err
	}
	return names, nil
}

// writeFileAtomic writes through a temp file so readers never see a partial
// snapshot.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(name, filePermission); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
