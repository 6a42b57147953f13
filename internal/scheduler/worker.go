package scheduler

import (
	"context"
	"fmt"

	digestservice "exits_backend/internal/digest/service"
	"exits_backend/internal/digest/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/apperr"
	"exits_backend/platform/config"
	"exits_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// DigestSender sends the weekly digest for one vertical.
type DigestSender interface {
	Send(ctx context.Context, v *vertical.Vertical, opts digestservice.SendOptions) (transport.SendResponse, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	digest    DigestSender
	verticals *vertical.Registry
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, digest DigestSender, verticals *vertical.Registry, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(digest, verticals, log)
	w.server = server
	return w, nil
}

func newWorker(digest DigestSender, verticals *vertical.Registry, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		digest:    digest,
		verticals: verticals,
		log:       log,
	}
	mux.HandleFunc(TaskWeeklyDigest, w.handleWeeklyDigest)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleWeeklyDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWeeklyDigestPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	v, ok := w.verticals.BySlug(payload.Vertical)
	if !ok {
		return fmt.Errorf("%w: unknown vertical %q", asynq.SkipRetry, payload.Vertical)
	}

	log := w.log.WithVertical(v.Slug)
	result, err := w.digest.Send(ctx, v, digestservice.SendOptions{Force: payload.Force})
	if apperr.Is(err, apperr.KindConflict) {
		// Periodic entries fire on every scheduler replica; only the first wins.
		log.Info("weekly digest already sent this week", "week", result.WeekOf)
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("weekly digest task finished", "message", result.Message, "sent", result.Sent, "failed", result.Failed)
	return nil
}
