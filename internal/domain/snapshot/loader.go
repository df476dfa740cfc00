// Package snapshot loads the yearly leaderboard files listed in a manifest and
// normalises them into year records.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/pkg/logger"
	"github.com/okian/starboard/pkg/metrics"
)

const defaultConcurrency = 4

// yearInName matches a four digit year right before the .json suffix, as in
// "2023.json" or "leaderboard_2023.json".
var yearInName = regexp.MustCompile(`(\d{4})\.json$`)

// Source lists and opens snapshot files.
type Source interface {
	// Manifest returns the snapshot file names.
	Manifest(ctx context.Context) ([]string, error)
	// Open returns the contents of one snapshot file.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Loader reads every snapshot a Source lists.
type Loader struct {
	source      Source
	concurrency int
	logger      logger.Logger
}

// NewLoader creates a Loader over src.
func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{
		source:      src,
		concurrency: defaultConcurrency,
		logger:      logger.Get().Named("snapshot"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the listed snapshots and returns one record per year, ordered
// by year. An unreadable manifest yields no records and no error. Any snapshot
// failure fails the whole load and no partial result is returned.
func (l *Loader) Load(ctx context.Context) ([]model.YearRecord, error) {
	names, err := l.source.Manifest(ctx)
	if err != nil {
		metrics.RecordLoadFailure(metrics.FailureManifest)
		l.logger.Warn(ctx, "manifest unavailable, treating as empty", logger.Error(err))
		return []model.YearRecord{}, nil
	}
	names = slices.Clone(names)
	slices.Sort(names)

	snaps := make([]model.Snapshot, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range names {
		g.Go(func() error {
			snap, err := l.fetch(gctx, name)
			if err != nil {
				return fmt.Errorf("%w %q: %w", ErrSnapshot, name, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordLoadFailure(metrics.FailureSnapshot)
		return nil, err
	}

	return l.normalize(ctx, names, snaps), nil
}

func (l *Loader) fetch(ctx context.Context, name string) (model.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshotFetch(float64(time.Since(start).Milliseconds()))
	}()

	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer func() { _ = rc.Close() }()

	var snap model.Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return snap, nil
}

// normalize labels each snapshot with its year and keeps the last file of
// each year. names must be sorted.
func (l *Loader) normalize(ctx context.Context, names []string, snaps []model.Snapshot) []model.YearRecord {
	byYear := make(map[string]model.YearRecord, len(snaps))
	for i, snap := range snaps {
		year := YearOf(names[i], snap)
		if year == "" {
			l.logger.Warn(ctx, "snapshot has no year, skipping", logger.String("file", names[i]))
			continue
		}
		if prev, ok := byYear[year]; ok {
			l.logger.Debug(ctx, "newer snapshot replaces year",
				logger.String("year", year),
				logger.String("file", names[i]),
				logger.Int("previous_members", len(prev.Members)),
			)
		}
		members := snap.Members
		if members == nil {
			members = map[string]model.Member{}
		}
		byYear[year] = model.YearRecord{Year: year, Members: members}
	}

	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	out := make([]model.YearRecord, len(years))
	for i, y := range years {
		out[i] = byYear[y]
	}
	return out
}

// YearOf labels a snapshot: its event field when present, else a year taken
// from the file name. "" means the snapshot cannot be placed.
func YearOf(name string, snap model.Snapshot) string {
	if ev := strings.TrimSpace(snap.Event); ev != "" {
		return ev
	}
	if m := yearInName.FindStringSubmatch(path.Base(name)); m != nil {
		return m[1]
	}
	return ""
}

// DecodeManifest reads a manifest: a JSON array of snapshot file names.
func DecodeManifest(r io.Reader) ([]string, error) {
	var names []string
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}
