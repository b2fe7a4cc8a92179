// Package sharing runs best-effort fan-out: one attempt per target, all
// attempts settled before reporting. A failing target never cancels its
// siblings and never fails the batch; callers get every outcome and decide
// what a partial result means.
package sharing

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Outcome records one target's attempt.
type Outcome struct {
	TargetID primitive.ObjectID
	Err      error
}

// Result aggregates a settled fan-out.
type Result struct {
	Outcomes []Outcome
	Failed   int
}

// Succeeded reports how many targets were linked.
func (r Result) Succeeded() int { return len(r.Outcomes) - r.Failed }

// FanOut applies fn to every target concurrently and waits for all attempts
// to settle. Outcomes are returned in target order. An empty target list is
// a valid, already-settled fan-out.
//
// The context is passed through to fn as-is; cancellation applies to
// attempts still in flight, not to the settling itself.
func FanOut(ctx context.Context, log *zap.Logger, targets []primitive.ObjectID, fn func(ctx context.Context, target primitive.ObjectID) error) Result {
	if len(targets) == 0 {
		return Result{}
	}

	outcomes := make([]Outcome, len(targets))
	var wg sync.WaitGroup
	for i, id := range targets {
		wg.Add(1)
		go func(i int, id primitive.ObjectID) {
			defer wg.Done()
			outcomes[i] = Outcome{TargetID: id, Err: fn(ctx, id)}
		}(i, id)
	}
	wg.Wait()

	res := Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			res.Failed++
			log.Warn("fan-out target failed",
				zap.String("target_id", o.TargetID.Hex()),
				zap.Error(o.Err))
		}
	}
	return res
}
