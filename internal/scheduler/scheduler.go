package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/config"
	userrepo "github.com/Additional-Code/tableside/internal/repository/user"
	"github.com/Additional-Code/tableside/internal/tracker"
)

// Scheduler runs periodic housekeeping: sweeping expired verification codes
// and releasing abandoned tracking sessions.
type Scheduler struct {
	inner   gocron.Scheduler
	users   *userrepo.Repository
	tracker *tracker.Engine
	logger  *zap.Logger
	ttl     time.Duration
}

// Params defines dependencies for constructing Scheduler.
type Params struct {
	fx.In

	Users   *userrepo.Repository
	Tracker *tracker.Engine
	Config  config.Config
	Logger  *zap.Logger
}

// NewScheduler builds the scheduler with its jobs registered.
func NewScheduler(p Params) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		inner:   inner,
		users:   p.Users,
		tracker: p.Tracker,
		logger:  p.Logger,
		ttl:     p.Config.Orders.SessionTTL,
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(s.expireCodes),
	); err != nil {
		return nil, err
	}
	if _, err := inner.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(s.sweepSessions),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Module wires the scheduler into the Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewScheduler),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler, logger *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				s.inner.Start()
				logger.Info("scheduler started")
				return nil
			},
			OnStop: func(context.Context) error {
				return s.inner.Shutdown()
			},
		})
	}),
)

func (s *Scheduler) expireCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := s.users.ExpireCodes(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("verification code sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		s.logger.Info("verification codes expired", zap.Int64("count", swept))
	}
}

func (s *Scheduler) sweepSessions() {
	released := s.tracker.SweepStale(s.ttl)
	if released > 0 {
		s.logger.Info("stale tracking sessions released", zap.Int("count", released))
	}
}
