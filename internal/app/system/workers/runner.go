// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/system/tasks"
	"go.uber.org/zap"
)

// Runner drives periodic maintenance jobs in the background. Each job gets
// its own ticker loop; a failing run is logged and retried on the next
// tick, never escalated.
type Runner struct {
	jobs   []tasks.Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRunner creates a runner for the given jobs.
func NewRunner(logger *zap.Logger, jobs ...tasks.Job) *Runner {
	return &Runner{
		jobs:   jobs,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins every job's loop.
func (r *Runner) Start() {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.run(job)
		r.log.Info("maintenance job started",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
}

// Stop signals all loops to stop and waits for them to finish.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
	r.log.Info("maintenance jobs stopped")
}

func (r *Runner) run(job tasks.Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := job.Run(ctx); err != nil {
				r.log.Error("maintenance job failed",
					zap.String("job", job.Name),
					zap.Error(err))
			}
			cancel()
		}
	}
}
