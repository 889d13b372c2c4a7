package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/logging"
	"github.com/JonMunkholm/holidaycal/internal/ods"
	"github.com/JonMunkholm/holidaycal/internal/scrape"
)

// HolidaySource fetches the holidays of one country for a set of years.
// *scrape.Fetcher satisfies it.
type HolidaySource interface {
	FetchYears(ctx context.Context, base string, years []int) (scrape.Result, error)
}

// Archive persists finished runs. The store package provides a PostgreSQL
// implementation; a nil Archive disables archiving.
type Archive interface {
	SaveRun(ctx context.Context, report *RunReport) error
}

// recentRuns is how many reports the service keeps in memory.
const recentRuns = 50

// Service runs populate, override and URL refresh jobs against the country
// spreadsheet. Runs are serialized by a one-slot RunLimiter.
type Service struct {
	cfg     *config.Config
	source  HolidaySource
	archive Archive
	limiter *RunLimiter
	runs    *runStore
	now     func() time.Time
}

// NewService creates a new Service instance. archive may be nil.
func NewService(cfg *config.Config, source HolidaySource, archive Archive) *Service {
	return &Service{
		cfg:     cfg,
		source:  source,
		archive: archive,
		limiter: NewRunLimiter(cfg.Run.MaxWaitTime),
		runs:    newRunStore(recentRuns),
		now:     time.Now,
	}
}

// Limiter exposes the run limiter for status reporting and shutdown.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// Run returns a report by ID. A report for a run still in progress carries
// its header fields only.
func (s *Service) Run(id uuid.UUID) (*RunReport, error) {
	r, ok := s.runs.get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, nil
}

// Runs returns recent reports, newest first.
func (s *Service) Runs() []*RunReport {
	return s.runs.list()
}

// ListCountries reads the country rows of the configured template.
func (s *Service) ListCountries(ctx context.Context) ([]Country, error) {
	doc, err := ods.Open(s.cfg.Document.TemplatePath)
	if err != nil {
		return nil, err
	}
	return Countries(doc.Sheet(), s.cfg.Sheet), nil
}

// DefaultOutputPath returns <output dir>/<prefix><YYYYMMDD>.ods for now.
func (s *Service) DefaultOutputPath() string {
	name := s.cfg.Document.OutputPrefix + s.now().Format("20060102") + ".ods"
	return filepath.Join(s.cfg.Document.OutputDir, name)
}

// begin admits a run, attaches its ID to ctx and publishes its snapshot.
// The returned release must be called when the run ends.
func (s *Service) begin(ctx context.Context, kind RunKind, wait bool) (context.Context, *RunReport, func(), error) {
	report := newReport(ctx, kind, s.now())
	id := report.ID.String()

	if wait {
		if err := s.limiter.Acquire(ctx, id); err != nil {
			return ctx, nil, nil, err
		}
	} else if !s.limiter.TryAcquire(id) {
		return ctx, nil, nil, ErrRunInProgress
	}

	ctx = logging.ContextWithRunID(ctx, id)
	s.runs.put(report.snapshot())
	logging.FromContext(ctx).Info("run started", "kind", kind, "trigger", report.Trigger)
	return ctx, report, s.limiter.Release, nil
}

// runContext bounds a run by the configured run timeout.
func (s *Service) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Run.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Run.Timeout)
}

// end finishes report, archives it and publishes the final version.
func (s *Service) end(ctx context.Context, report *RunReport, err error) {
	report.finish(s.now(), err)
	log := logging.FromContext(ctx)

	if s.archive != nil && report.Status == RunSucceeded {
		// The run's ctx may already be cancelled; archive on a fresh one.
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		if aerr := s.archive.SaveRun(actx, report); aerr != nil {
			report.Warnings = append(report.Warnings, "archive: "+aerr.Error())
			log.Warn("archive run failed", "error", aerr)
		}
		cancel()
	}

	s.runs.put(report)
	if err != nil {
		log.Error("run failed",
			"kind", report.Kind,
			"code", report.Error.Code,
			"error", err,
			"duration_ms", report.Duration().Milliseconds(),
		)
		return
	}
	log.Info("run completed",
		"kind", report.Kind,
		"countries", len(report.Countries),
		"written", report.Written(),
		"issues", report.IssueCount(),
		"output", report.Output,
		"duration_ms", report.Duration().Milliseconds(),
	)
}
