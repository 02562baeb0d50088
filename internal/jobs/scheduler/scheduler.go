package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

// EveryMinute fires at second zero of every minute.
const EveryMinute = "0 * * * * *"

type JobFunc func(ctx context.Context) error

// ctxBox keeps the atomic.Value's concrete type stable across stores.
type ctxBox struct{ ctx context.Context }

type Scheduler struct {
	log     *logger.Logger
	cron    *cron.Cron
	timeout time.Duration
	baseCtx atomic.Value
}

func New(baseLog *logger.Logger, jobTimeout time.Duration) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}
	s := &Scheduler{
		log:     baseLog.With("component", "Scheduler"),
		cron:    cron.New(cron.WithSeconds()),
		timeout: jobTimeout,
	}
	s.baseCtx.Store(ctxBox{context.Background()})
	return s
}

// Register adds fn under a six-field cron spec (seconds first). A run that is
// still going when the next tick arrives causes that tick to be skipped.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	id, err := s.cron.AddFunc(spec, s.wrap(name, fn))
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("job scheduled", "job", name, "spec", spec, "entry_id", int(id))
	return nil
}

func (s *Scheduler) wrap(name string, fn JobFunc) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			s.log.Warn("previous run still active, skipping", "job", name)
			return
		}
		defer running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("job panic", "job", name, "panic", r)
			}
		}()

		parent := s.baseCtx.Load().(ctxBox).ctx
		ctx, cancel := context.WithTimeout(parent, s.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.Warn("job failed", "job", name, "error", err, "elapsed", time.Since(start).String())
			return
		}
		s.log.Debug("job finished", "job", name, "elapsed", time.Since(start).String())
	}
}

// Run starts the cron loop and blocks until ctx is cancelled and any job in
// flight has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	s.baseCtx.Store(ctxBox{ctx})
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}
