package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const reconcileTimeout = time.Minute

// ReconcileScheduler periodically recomputes total scores for grading events
// that were committed but never delivered.
type ReconcileScheduler struct {
	cron      *cron.Cron
	scores    TotalScoreService
	batchSize int
	logger    zerolog.Logger
}

// NewReconcileScheduler registers the sweep on a seconds-precision cron spec.
// A blank schedule yields a disabled scheduler whose Start and Stop do nothing;
// RunOnce still works for manual sweeps.
func NewReconcileScheduler(scores TotalScoreService, schedule string, batchSize int, logger zerolog.Logger) (*ReconcileScheduler, error) {
	s := &ReconcileScheduler{
		scores:    scores,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "reconcile_scheduler").Logger(),
	}

	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return s, nil
	}

	s.cron = cron.New(cron.WithSeconds())
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Enabled reports whether sweeps run on a schedule.
func (s *ReconcileScheduler) Enabled() bool {
	return s.cron != nil
}

// Start begins running scheduled sweeps in the background.
func (s *ReconcileScheduler) Start() {
	if !s.Enabled() {
		s.logger.Info().Msg("total score reconciliation disabled")
		return
	}
	s.logger.Info().Msg("starting total score reconciliation")
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *ReconcileScheduler) Stop() {
	if !s.Enabled() {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("total score reconciliation stopped")
}

// RunOnce performs a single sweep.
func (s *ReconcileScheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	recomputed, err := s.scores.ReconcilePending(ctx, s.batchSize)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.
		Int("recomputed", recomputed).
		Dur("duration", time.Since(start)).
		Msg("total score reconciliation finished")

	return recomputed, err
}
