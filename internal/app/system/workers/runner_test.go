package workers_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/system/tasks"
	"github.com/kdawg1232/memoserver/internal/app/system/workers"
	"go.uber.org/zap"
)

func TestRunner_RunsJobOnInterval(t *testing.T) {
	var runs atomic.Int64
	job := tasks.Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	r := workers.NewRunner(zap.NewNop(), job)
	r.Start()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("job did not run twice within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	r.Stop()
}

func TestRunner_StopHaltsJobs(t *testing.T) {
	var runs atomic.Int64
	job := tasks.Job{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	r := workers.NewRunner(zap.NewNop(), job)
	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Error("job kept running after Stop")
	}
}

func TestRunner_FailingJobKeepsRunning(t *testing.T) {
	var runs atomic.Int64
	job := tasks.Job{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return context.DeadlineExceeded
		},
	}

	r := workers.NewRunner(zap.NewNop(), job)
	r.Start()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("failing job was not retried")
		case <-time.After(5 * time.Millisecond):
		}
	}
	r.Stop()
}
