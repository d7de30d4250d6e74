package scheduler_fx

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pmsportal/internal/config"
	"pmsportal/internal/scheduler"
	"pmsportal/internal/services"
)

var Module = fx.Options(
	fx.Provide(scheduler.New),
	fx.Invoke(registerSweep),
)

// registerSweep schedules the reconciliation sweep unless SWEEP_SCHEDULE is empty.
func registerSweep(lc fx.Lifecycle, cfg *config.Config, s *scheduler.Scheduler, reconcile services.ReconcileService, log zerolog.Logger) error {
	if cfg.Sweep.Schedule == "" {
		log.Info().Msg("Scheduled sweep disabled")
		return nil
	}
	if err := s.AddJob(cfg.Sweep.Schedule, scheduler.NewSweepJob(reconcile, 0, log)); err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
	return nil
}
