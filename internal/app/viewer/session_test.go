package viewer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/store/queries/scopedview"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// manualTimer lets tests fire the quiet-window expiry on demand.
type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.stopped
	m.stopped = true
	return !was
}

func (m *manualTimer) fire() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	f := m.f
	m.mu.Unlock()
	f()
}

// manualClock hands out manualTimers in creation order.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) factory(_ time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) latest(t *testing.T) *manualTimer {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		t.Fatal("no quiet-window timer was started")
	}
	return c.timers[len(c.timers)-1]
}

// fakeBackend is a loader whose snapshot the test mutates between fetches.
type fakeBackend struct {
	mu      sync.Mutex
	entries []scopedview.Entry
	fetches int
}

func (b *fakeBackend) load(_ context.Context) ([]scopedview.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	out := make([]scopedview.Entry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

func (b *fakeBackend) set(entries []scopedview.Entry) {
	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
}

func entry(id primitive.ObjectID) scopedview.Entry {
	return scopedview.Entry{Memo: models.Memo{ID: id}, Color: models.PersonalColor}
}

func ids(entries []scopedview.Entry) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		out[i] = e.Memo.ID
	}
	return out
}

func TestDeleteIsSynchronousAndStaleRefreshCannotResurrect(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	backend := &fakeBackend{entries: []scopedview.Entry{entry(a), entry(b)}}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.ApplyDelete(a)

	if got := s.Visible(); len(got) != 1 || got[0].Memo.ID != b {
		t.Fatalf("visible after delete = %v, want only %v immediately", ids(got), b)
	}

	// A stale read resolving inside the quiet window still returns a.
	// It must not reappear.
	s.refresh(0)
	if got := s.Visible(); len(got) != 1 || got[0].Memo.ID != b {
		t.Fatalf("stale refresh resurrected the deleted memo: %v", ids(got))
	}

	// Backend catches up; the window expiry runs the one reconciling
	// refresh, which leaves the set unchanged.
	backend.set([]scopedview.Entry{entry(b)})
	clock.latest(t).fire()
	if got := s.Visible(); len(got) != 1 || got[0].Memo.ID != b {
		t.Fatalf("post-window reconcile changed the set: %v", ids(got))
	}
}

func TestDeleteTombstoneSurvivesLaggingReconcile(t *testing.T) {
	a := primitive.NewObjectID()
	backend := &fakeBackend{entries: []scopedview.Entry{entry(a)}}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.ApplyDelete(a)

	// The backend is still lagging when the window expires.
	clock.latest(t).fire()
	if got := s.Visible(); len(got) != 0 {
		t.Fatalf("lagging reconcile resurrected the deleted memo: %v", ids(got))
	}
}

func TestCreateIsPrependedAndMergeIsIdempotent(t *testing.T) {
	old := primitive.NewObjectID()
	backend := &fakeBackend{entries: []scopedview.Entry{entry(old)}}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	created := primitive.NewObjectID()
	s.ApplyCreate(entry(created))

	if got := s.Visible(); len(got) != 2 || got[0].Memo.ID != created {
		t.Fatalf("visible after create = %v, want %v prepended", ids(got), created)
	}

	// Backend now includes the new memo. The reconcile must match by ID,
	// replacing the optimistic row rather than duplicating it.
	backend.set([]scopedview.Entry{entry(created), entry(old)})
	clock.latest(t).fire()

	got := s.Visible()
	if len(got) != 2 {
		t.Fatalf("reconcile duplicated the optimistic create: %v", ids(got))
	}
	seen := map[primitive.ObjectID]int{}
	for _, e := range got {
		seen[e.Memo.ID]++
	}
	if seen[created] != 1 || seen[old] != 1 {
		t.Fatalf("merge is not keyed by ID: %v", ids(got))
	}
}

func TestUnconfirmedCreateSurvivesLaggingReconcile(t *testing.T) {
	backend := &fakeBackend{}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	created := primitive.NewObjectID()
	s.ApplyCreate(entry(created))

	// Backend has not surfaced the new memo yet; the reconcile must not
	// drop it.
	clock.latest(t).fire()
	if got := s.Visible(); len(got) != 1 || got[0].Memo.ID != created {
		t.Fatalf("lagging reconcile dropped the optimistic create: %v", ids(got))
	}
}

func TestNotifyIsDroppedInsideQuietWindow(t *testing.T) {
	a := primitive.NewObjectID()
	backend := &fakeBackend{entries: []scopedview.Entry{entry(a)}}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	base := backend.fetches

	s.ApplyDelete(a)
	s.Notify()
	s.Notify()

	if backend.fetches != base {
		t.Fatalf("notify fetched %d times inside the quiet window, want 0", backend.fetches-base)
	}

	clock.latest(t).fire()
	if backend.fetches != base+1 {
		t.Fatalf("window expiry fetched %d times, want exactly 1", backend.fetches-base)
	}
}

func TestBackToBackMutationsReconcileOnce(t *testing.T) {
	backend := &fakeBackend{}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	base := backend.fetches

	first := primitive.NewObjectID()
	s.ApplyCreate(entry(first))
	firstWindow := clock.latest(t)
	s.ApplyCreate(entry(primitive.NewObjectID()))

	// The first window was restarted; its expiry must be inert.
	firstWindow.fire()
	if backend.fetches != base {
		t.Fatalf("restarted window still fetched (%d fetches)", backend.fetches-base)
	}

	clock.latest(t).fire()
	if backend.fetches != base+1 {
		t.Fatalf("fetches after final expiry = %d, want exactly 1", backend.fetches-base)
	}
}

func TestCloseDiscardsLateRefresh(t *testing.T) {
	a := primitive.NewObjectID()
	backend := &fakeBackend{entries: []scopedview.Entry{entry(a)}}
	clock := &manualClock{}

	s := NewSession(backend.load, WithTimerFactory(clock.factory))
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.ApplyDelete(a)
	window := clock.latest(t)
	s.Close()

	// Teardown stopped the timer; firing it anyway must do nothing, and a
	// refresh resolving after close must be discarded, not applied.
	window.fire()
	s.refresh(0)

	if got := s.Visible(); len(got) != 0 {
		t.Fatalf("late refresh was applied after close: %v", ids(got))
	}
}
