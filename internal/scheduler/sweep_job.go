package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pmsportal/internal/services"
)

// SweepJob reconciles every account with open transactions against the gateway.
type SweepJob struct {
	reconcile services.ReconcileService
	timeout   time.Duration
	log       zerolog.Logger
}

func NewSweepJob(reconcile services.ReconcileService, timeout time.Duration, log zerolog.Logger) *SweepJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SweepJob{
		reconcile: reconcile,
		timeout:   timeout,
		log:       log.With().Str("job", "reconcile_sweep").Logger(),
	}
}

func (j *SweepJob) Name() string { return "reconcile_sweep" }

func (j *SweepJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	reports, err := j.reconcile.SyncAll(ctx)

	var updated, failed, notFound int
	for _, r := range reports {
		updated += r.Updated
		failed += r.Failed
		notFound += r.NotFound
	}
	j.log.Info().
		Int("accounts", len(reports)).
		Int("updated", updated).
		Int("failed", failed).
		Int("not_found", notFound).
		Dur("took", time.Since(start)).
		Msg("Sweep finished")
	return err
}
