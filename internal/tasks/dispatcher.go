package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// Job is everything a background worker needs. It is copied into the worker goroutine.
type Job struct {
	ID    string
	Kind  models.Kind
	URL   string
	Skip  int
	Limit int
}

// JobRunner executes one job to completion. [Pipeline] implements it.
type JobRunner interface {
	Run(ctx context.Context, job Job)
}

// Dispatcher starts one goroutine per job and returns immediately.
//
// With a positive limit at most that many jobs run at once; the rest wait for a slot.
type Dispatcher struct {
	ctx    context.Context
	runner JobRunner
	slots  chan struct{}
	wg     sync.WaitGroup
	logger *log.Logger
}

// NewDispatcher creates a [Dispatcher] whose jobs run under ctx.
//
// maxConcurrent <= 0 means unlimited.
func NewDispatcher(ctx context.Context, runner JobRunner, maxConcurrent int, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	d := &Dispatcher{ctx: ctx, runner: runner, logger: logger}
	if maxConcurrent > 0 {
		d.slots = make(chan struct{}, maxConcurrent)
	}
	return d
}

// Dispatch schedules job and returns without waiting for it.
func (d *Dispatcher) Dispatch(job Job) {
	d.wg.Add(1)
	go d.work(job)
}

func (d *Dispatcher) work(job Job) {
	defer d.wg.Done()

	if d.slots != nil {
		d.slots <- struct{}{}
		defer func() { <-d.slots }()
	}

	d.logger.Debug("job started", "task_id", job.ID, "kind", job.Kind)
	d.runner.Run(d.ctx, job)
	d.logger.Debug("job finished", "task_id", job.ID)
}

// Wait blocks until every dispatched job returns or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
