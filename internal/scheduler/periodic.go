package scheduler

import (
	"context"
	"fmt"
	"time"

	"exits_backend/internal/vertical"
	"exits_backend/platform/config"
	"exits_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic registers one weekly digest entry per vertical on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
	entries   []string
}

// NewPeriodic registers cfg.GetWeeklyDigestCron() for every vertical, evaluated in zone.
func NewPeriodic(cfg config.SchedulerConfig, verticals *vertical.Registry, zone *time.Location, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: zone})
	p := &Periodic{scheduler: scheduler, log: log}

	spec := cfg.GetWeeklyDigestCron()
	for _, v := range verticals.All() {
		task, err := NewWeeklyDigestTask(WeeklyDigestPayload{Vertical: v.Slug})
		if err != nil {
			return nil, err
		}
		entryID, err := scheduler.Register(spec, task, digestTaskOptions(queueName(cfg))...)
		if err != nil {
			return nil, fmt.Errorf("register weekly digest for %s: %w", v.Slug, err)
		}
		p.entries = append(p.entries, entryID)
		log.Info("weekly digest scheduled", "vertical", v.Slug, "cron", spec, "entry", entryID)
	}
	return p, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
