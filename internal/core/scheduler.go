package core

// scheduler.go re-runs populate periodically in serve mode.
//
// Each tick builds a fresh calendar from the template so the published file
// picks up holidays the listing site adds during the year. A tick that finds
// another run holding the document waits up to the limiter's wait time and
// then gives up until the next tick. Failures are logged, never fatal.

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/holidaycal/internal/logging"
)

// StartRefreshScheduler runs populate every interval until ctx is cancelled.
// The first run happens after one interval, not on start.
func (s *Service) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	if interval <= 0 {
		log.Info("refresh scheduler disabled")
		return
	}
	log.Info("refresh scheduler started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runRefreshJob(ctx)
		}
	}
}

// runRefreshJob performs one scheduled populate.
func (s *Service) runRefreshJob(ctx context.Context) {
	start := time.Now()
	ctx = ContextWithTrigger(ctx, TriggerScheduler)

	report, err := s.Populate(ctx, PopulateRequest{})
	log := logging.FromContext(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Warn("scheduled refresh skipped", "active_run", s.limiter.Active())
	case err != nil:
		log.Error("scheduled refresh failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
	default:
		log.Info("scheduled refresh completed",
			"run_id", report.ID.String(),
			"output", report.Output,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
