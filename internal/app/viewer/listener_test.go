package viewer

import (
	"context"
	"testing"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/system/changefeed"
)

func TestListenForwardsHintsAndDrains(t *testing.T) {
	backend := &fakeBackend{}

	s := NewSession(backend.load)
	defer s.Close()
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	base := backend.fetches

	events := make(chan changefeed.Event, 4)
	done := Listen(events, s)

	events <- changefeed.Event{Collection: "memos", Op: "insert"}

	// Notify refreshes on its own goroutine; poll for the fetch.
	deadline := time.Now().Add(2 * time.Second)
	for {
		backend.mu.Lock()
		fetches := backend.fetches
		backend.mu.Unlock()
		if fetches > base {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("change hint never triggered a refresh")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(events)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not drain after the subscription closed")
	}
}
