package sharing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestFanOutSettlesAllTargets(t *testing.T) {
	targets := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}
	failing := targets[1]

	var mu sync.Mutex
	attempted := map[primitive.ObjectID]bool{}

	res := FanOut(context.Background(), zap.NewNop(), targets, func(_ context.Context, id primitive.ObjectID) error {
		mu.Lock()
		attempted[id] = true
		mu.Unlock()
		if id == failing {
			return errors.New("link insert failed")
		}
		return nil
	})

	if len(attempted) != 3 {
		t.Fatalf("attempted %d targets, want all 3; a failure must not skip siblings", len(attempted))
	}
	if res.Failed != 1 || res.Succeeded() != 2 {
		t.Errorf("result = %d failed / %d succeeded, want 1 / 2", res.Failed, res.Succeeded())
	}
	if res.Outcomes[1].TargetID != failing || res.Outcomes[1].Err == nil {
		t.Errorf("outcome[1] = %+v, want the failing target in order", res.Outcomes[1])
	}
}

func TestFanOutEmptyTargets(t *testing.T) {
	res := FanOut(context.Background(), zap.NewNop(), nil, func(_ context.Context, _ primitive.ObjectID) error {
		t.Fatal("fn must not run with no targets")
		return nil
	})
	if res.Failed != 0 || len(res.Outcomes) != 0 {
		t.Errorf("empty fan-out = %+v, want zero result", res)
	}
}

func TestFanOutDoesNotCancelSiblingsOnFailure(t *testing.T) {
	targets := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	res := FanOut(context.Background(), zap.NewNop(), targets, func(ctx context.Context, id primitive.ObjectID) error {
		if id == targets[0] {
			return errors.New("immediate failure")
		}
		// The slow sibling must still be allowed to finish.
		select {
		case <-time.After(20 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if res.Outcomes[1].Err != nil {
		t.Errorf("slow sibling failed with %v; the fast failure must not cancel it", res.Outcomes[1].Err)
	}
	if res.Failed != 1 {
		t.Errorf("failed = %d, want 1", res.Failed)
	}
}
