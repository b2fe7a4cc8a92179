// Package viewer keeps a single viewing session's visible memo set
// consistent with an eventually-consistent backend. Mutations the user just
// made are applied to the local set immediately; background refreshes that
// could race with a still-propagating mutation are held back for a quiet
// window, then reconciled once by identifier.
//
// A Session owns the visible set for exactly one scope. Switching scope
// means closing the session and opening a new one; there is no incremental
// diff between scopes.
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/store/queries/scopedview"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultQuietWindow is how long background refreshes are suppressed after
// a local mutation. Long enough for a write to reach the read path, short
// enough that concurrent changes from other members are not stale for long.
const DefaultQuietWindow = 3 * time.Second

// Loader fetches the current scope's entries from the backend.
type Loader func(ctx context.Context) ([]scopedview.Entry, error)

// timer is the stoppable handle the session holds on its quiet window.
type timer interface {
	Stop() bool
}

// TimerFactory schedules f after d. Tests substitute a manual trigger.
type TimerFactory func(d time.Duration, f func()) timer

func realTimer(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// Session is the in-memory visible set for one scope, owned by one logical
// viewer. The mutex exists because refreshes resolve on their own
// goroutines, not because sessions are shared.
type Session struct {
	loader Loader
	quiet  time.Duration
	newTim TimerFactory
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	visible    []scopedview.Entry
	optimistic map[primitive.ObjectID]struct{} // created locally, unconfirmed by a refresh
	tombstones map[primitive.ObjectID]struct{} // deleted locally, refresh must not resurrect
	window     timer
	suppressed bool
	gen        uint64 // bumped on close; late refreshes carry the old value
	closed     bool
}

// Option configures a Session.
type Option func(*Session)

// WithQuietWindow overrides the suppression duration.
func WithQuietWindow(d time.Duration) Option {
	return func(s *Session) { s.quiet = d }
}

// WithTimerFactory substitutes the quiet-window timer, for tests.
func WithTimerFactory(f TimerFactory) Option {
	return func(s *Session) { s.newTim = f }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates a session for one scope. Call Load before reading
// Visible, and Close when the scope is torn down.
func NewSession(loader Loader, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		loader:     loader,
		quiet:      DefaultQuietWindow,
		newTim:     realTimer,
		log:        zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		optimistic: make(map[primitive.ObjectID]struct{}),
		tombstones: make(map[primitive.ObjectID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load performs the initial fetch, fully replacing the visible set.
func (s *Session) Load(ctx context.Context) error {
	entries, err := s.loader(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.visible = entries
	return nil
}

// Visible returns a copy of the current visible set, newest first.
func (s *Session) Visible() []scopedview.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scopedview.Entry, len(s.visible))
	copy(out, s.visible)
	return out
}

// ApplyCreate prepends a successfully-created memo to the visible set,
// synchronously with the caller's success signal. Callers must only invoke
// this after the backend write succeeded; a failed mutation leaves the set
// untouched by never reaching here.
func (s *Session) ApplyCreate(e scopedview.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.visible = append([]scopedview.Entry{e}, s.visible...)
	s.optimistic[e.Memo.ID] = struct{}{}
	delete(s.tombstones, e.Memo.ID)
	s.startQuietWindowLocked()
}

// ApplyDelete removes a successfully-deleted memo from the visible set,
// synchronously, and tombstones it so a stale refresh cannot resurrect it.
func (s *Session) ApplyDelete(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	kept := s.visible[:0]
	for _, e := range s.visible {
		if e.Memo.ID != id {
			kept = append(kept, e)
		}
	}
	s.visible = kept
	s.tombstones[id] = struct{}{}
	delete(s.optimistic, id)
	s.startQuietWindowLocked()
}

// Notify is the change-feed hook: a hint that remote state moved, never a
// delta to apply. Inside the quiet window the hint is dropped; the window's
// own reconciling refresh covers whatever it pointed at.
func (s *Session) Notify() {
	s.mu.Lock()
	if s.closed || s.suppressed {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	s.mu.Unlock()

	go s.refresh(gen)
}

// Close tears the session down. The quiet-window timer is stopped and any
// refresh that resolves afterward is discarded, not applied.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	if s.window != nil {
		s.window.Stop()
		s.window = nil
	}
	s.cancel()
}

// startQuietWindowLocked opens (or extends) the suppression window. The
// expiry fires exactly one reconciling refresh; back-to-back mutations
// restart the timer so only the final expiry reconciles.
func (s *Session) startQuietWindowLocked() {
	if s.window != nil {
		s.window.Stop()
	}
	s.suppressed = true
	gen := s.gen
	s.window = s.newTim(s.quiet, func() {
		s.mu.Lock()
		if s.closed || s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.suppressed = false
		s.window = nil
		s.mu.Unlock()

		s.refresh(gen)
	})
}

// refresh fetches the scope and merges by identifier. The fetch happens
// outside the lock; the generation check on apply discards results that
// resolved after teardown.
func (s *Session) refresh(gen uint64) {
	entries, err := s.loader(s.ctx)
	if err != nil {
		s.log.Warn("scope refresh failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen || s.suppressed {
		return
	}
	s.visible = s.mergeLocked(entries)
}

// mergeLocked reconciles a fetched snapshot with local optimistic state:
// tombstoned rows are dropped even if the snapshot still carries them, and
// optimistic creates the snapshot has not caught up with stay prepended.
// Matching is by memo ID, never by position.
func (s *Session) mergeLocked(fetched []scopedview.Entry) []scopedview.Entry {
	out := make([]scopedview.Entry, 0, len(fetched)+len(s.optimistic))

	inFetched := make(map[primitive.ObjectID]struct{}, len(fetched))
	for _, e := range fetched {
		inFetched[e.Memo.ID] = struct{}{}
		if _, confirmed := s.optimistic[e.Memo.ID]; confirmed {
			delete(s.optimistic, e.Memo.ID)
		}
	}

	// Unconfirmed optimistic creates keep their prepended position.
	for _, e := range s.visible {
		if _, opt := s.optimistic[e.Memo.ID]; opt {
			if _, dup := inFetched[e.Memo.ID]; !dup {
				out = append(out, e)
			}
		}
	}
	for _, e := range fetched {
		if _, dead := s.tombstones[e.Memo.ID]; dead {
			continue
		}
		out = append(out, e)
	}

	// A snapshot that omits a tombstoned row confirms the delete propagated.
	for id := range s.tombstones {
		if _, still := inFetched[id]; !still {
			delete(s.tombstones, id)
		}
	}
	return out
}
