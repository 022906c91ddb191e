// Package scheduler drives the periodic billing jobs: dunning retries and
// notification dispatch.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/recurrent/internal/clock"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/recurrent/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log             *zap.Logger
	Clock           clock.Clock
	DunningSvc      dunningdomain.Service
	NotificationSvc notificationdomain.Service
	Config          Config `optional:"true"`
}

type Scheduler struct {
	log             *zap.Logger
	cfg             Config
	clock           clock.Clock
	dunningSvc      dunningdomain.Service
	notificationSvc notificationdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.DunningSvc == nil || p.NotificationSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:             p.Log.Named("scheduler"),
		cfg:             p.Config.withDefaults(),
		clock:           p.Clock,
		dunningSvc:      p.DunningSvc,
		notificationSvc: p.NotificationSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	metrics := obsmetrics.Billing()
	metrics.IncJobRun(name)

	err := fn(ctx)
	metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	metrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	err = errors.Join(err, s.runJob(parent, "dunning_retries", s.DunningRetriesJob))
	err = errors.Join(err, s.runJob(parent, "notification_dispatch", s.NotificationDispatchJob))

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) DunningRetriesJob(ctx context.Context) error {
	processed, err := s.dunningSvc.RunDueRetries(ctx, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if processed > 0 {
		s.log.Info("dunning retries processed", zap.Int("cases", processed))
	}
	return nil
}

func (s *Scheduler) NotificationDispatchJob(ctx context.Context) error {
	sent, err := s.notificationSvc.DispatchPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if sent > 0 {
		s.log.Info("notifications dispatched", zap.Int("sent", sent))
	}
	return nil
}
