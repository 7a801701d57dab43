package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/d60-Lab/topic-scheduler/pkg/logger"
)

// ErrSweepInProgress is returned by RunOnce when another sweep holds the
// guard.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Trigger fires the promotion sweep on a fixed wall-clock schedule. One sweep
// at a time: a tick that lands while the previous sweep is still running is
// skipped and logged, never queued.
type Trigger struct {
	engine  *ScheduledTopics
	spec    string
	cron    *cron.Cron
	running atomic.Bool
	onError func(error) // optional host hook (e.g. sentry)
}

func NewTrigger(engine *ScheduledTopics, spec string, onError func(error)) *Trigger {
	if spec == "" {
		spec = "*/1 * * * *"
	}
	return &Trigger{engine: engine, spec: spec, onError: onError}
}

// Start registers the recurring job and begins firing. Call once.
func (t *Trigger) Start() error {
	logger.Debug("scheduled topics: starting jobs", zap.String("spec", t.spec))
	t.cron = cron.New()
	if _, err := t.cron.AddFunc(t.spec, t.tick); err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (t *Trigger) Stop() {
	if t.cron != nil {
		<-t.cron.Stop().Done()
	}
}

// RunOnce performs a single guarded sweep outside the schedule.
func (t *Trigger) RunOnce(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrSweepInProgress
	}
	defer t.running.Store(false)
	return t.engine.HandleExpired(ctx)
}

// tick isolates failures per firing: an error is logged and reported, the
// schedule keeps going.
func (t *Trigger) tick() {
	if !t.running.CompareAndSwap(false, true) {
		logger.Warn("scheduled topics: previous sweep still running, skipping tick")
		return
	}
	defer t.running.Store(false)

	if err := t.engine.HandleExpired(context.Background()); err != nil {
		logger.Error("scheduled topics: sweep failed", zap.Error(err))
		if t.onError != nil {
			t.onError(err)
		}
	}
}
