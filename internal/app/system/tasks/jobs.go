// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	memostore "github.com/kdawg1232/memoserver/internal/app/store/memos"
	"github.com/kdawg1232/memoserver/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// Job is a named piece of periodic maintenance work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// OAuthStateCleanupJob removes expired OAuth state tokens. This is a
// backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// DanglingLinkSweepJob removes group_memos rows whose memo was deleted but
// whose cascade did not complete. Readers already drop dangling links at
// join time, so the sweep only reclaims storage and keeps counts honest.
func DanglingLinkSweepJob(memoStore *memostore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "dangling-link-sweep",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := memoStore.DeleteDanglingLinks(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("swept dangling group links", zap.Int64("count", count))
			}
			return nil
		},
	}
}
