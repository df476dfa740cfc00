// Package service runs load cycles: it fetches snapshots and the registration
// sheet, then aggregates, groups and ranks them for one set of view inputs.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/starboard/internal/adapters/repository"
	"github.com/okian/starboard/internal/domain/aggregate"
	"github.com/okian/starboard/internal/domain/grouping"
	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/registration"
	"github.com/okian/starboard/internal/domain/snapshot"
	"github.com/okian/starboard/internal/domain/viewstate"
	"github.com/okian/starboard/pkg/logger"
	"github.com/okian/starboard/pkg/metrics"
)

// CycleStats summarises the most recent load cycle.
type CycleStats struct {
	ID            string        `json:"id"`
	At            time.Time     `json:"at"`
	Duration      time.Duration `json:"duration_ns"`
	Years         int           `json:"years"`
	Members       int           `json:"members"`
	Registrations int           `json:"registrations"`
	Error         string        `json:"error,omitempty"`
}

// Service implements the API dependencies for the leaderboard viewer.
type Service struct {
	mu sync.RWMutex

	// Components
	source repository.Source
	loader *snapshot.Loader

	// Configuration
	columns          registration.Columns
	fetchConcurrency int

	// State
	started bool
	cycles  int64
	failed  int64
	last    CycleStats

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		columns:          registration.DefaultColumns(),
		fetchConcurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the loader. It does not fetch anything; every request runs
// its own load cycle.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.source == nil {
		return ErrNoSource
	}

	s.loader = snapshot.NewLoader(s.source,
		snapshot.WithConcurrency(s.fetchConcurrency),
		snapshot.WithLogger(s.logger.Named("snapshot")),
	)
	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("fetchConcurrency", s.fetchConcurrency),
		logger.String("usernameColumn", s.columns.Username),
		logger.String("levelColumn", s.columns.Level),
	)
	return nil
}

// Stop marks the service stopped. In-flight cycles finish on their own.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// Leaderboard runs one load cycle for state. A snapshot failure fails the
// cycle; a missing or unreadable registration sheet only leaves everyone
// unregistered.
func (s *Service) Leaderboard(ctx context.Context, state viewstate.State) (View, error) {
	s.mu.RLock()
	loader, started := s.loader, s.started
	s.mu.RUnlock()
	if !started {
		return View{}, ErrNotStarted
	}

	cycle := uuid.NewString()
	start := time.Now()
	log := s.logger

	var (
		years []model.YearRecord
		idx   = registration.Empty()
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		years, err = loader.Load(gctx)
		return err
	})
	g.Go(func() error {
		idx = s.registrations(gctx, cycle)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.finish(CycleStats{ID: cycle, At: start, Duration: time.Since(start), Error: err.Error()})
		log.Error(ctx, "load cycle failed", logger.String("cycle", cycle), logger.Error(err))
		return View{Cycle: cycle, State: state}, err
	}

	if !state.Valid() {
		metrics.RecordFilterError()
	}
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = y.Year
	}

	// Per-year counts ignore the year selection; only totals follow it.
	f := state.Filter()
	counts := f
	counts.Years = nil
	rows := aggregate.Totals(aggregate.Compute(years, counts), labels, f)
	groups := grouping.Group(rows, idx)

	view := View{
		Cycle:          cycle,
		GeneratedAt:    start.UTC(),
		Years:          labels,
		State:          state,
		Groups:         groups,
		Sections:       sections(groups),
		Empty:          len(years) == 0,
		Registrations:  idx.Len(),
		MissingColumns: idx.MissingColumns(),
	}

	took := time.Since(start)
	s.finish(CycleStats{
		ID:            cycle,
		At:            start,
		Duration:      took,
		Years:         len(years),
		Members:       len(rows),
		Registrations: idx.Len(),
	})
	log.Debug(ctx, "load cycle done",
		logger.String("cycle", cycle),
		logger.Int("years", len(years)),
		logger.Int("members", len(rows)),
		logger.Bool("filterValid", state.Valid()),
		logger.Duration("took", took),
	)
	return view, nil
}

// Years lists the year labels of the currently available snapshots.
func (s *Service) Years(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	loader, started := s.loader, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	years, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = y.Year
	}
	return labels, nil
}

// registrations loads the registration sheet. Any failure yields an empty
// index.
func (s *Service) registrations(ctx context.Context, cycle string) registration.Index {
	rc, err := s.source.Registration(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug(ctx, "no registration sheet", logger.String("cycle", cycle))
		return registration.Empty()
	}
	if err != nil {
		metrics.RecordLoadFailure(metrics.FailureRegistration)
		s.logger.Warn(ctx, "registration sheet unavailable", logger.String("cycle", cycle), logger.Error(err))
		return registration.Empty()
	}
	defer func() { _ = rc.Close() }()

	idx, err := registration.Parse(rc, s.columns)
	if err != nil {
		metrics.RecordLoadFailure(metrics.FailureRegistration)
		s.logger.Warn(ctx, "registration sheet unreadable", logger.String("cycle", cycle), logger.Error(err))
		return registration.Empty()
	}
	if missing := idx.MissingColumns(); len(missing) > 0 {
		s.logger.Warn(ctx, "registration sheet is missing columns",
			logger.String("cycle", cycle),
			logger.Any("missing", missing),
		)
	}
	return idx
}

func (s *Service) finish(st CycleStats) {
	outcome := metrics.OutcomeOK
	if st.Error != "" {
		outcome = metrics.OutcomeError
	}
	metrics.RecordLoadCycle(outcome, float64(st.Duration.Milliseconds()))
	if st.Error == "" {
		metrics.UpdateDataset(st.Members, st.Years, st.Registrations)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	if st.Error != "" {
		s.failed++
	}
	s.last = st
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"fetchConcurrency": s.fetchConcurrency,
		"cycles":           s.cycles,
		"failedCycles":     s.failed,
	}
	if s.cycles > 0 {
		stats["lastCycle"] = s.last
	}
	return stats
}
