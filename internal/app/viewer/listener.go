// internal/app/viewer/listener.go
package viewer

import (
	"github.com/kdawg1232/memoserver/internal/app/system/changefeed"
)

// Listen pumps change hints from a feed subscription into the session and
// returns a channel that closes when the subscription does. Every event is
// passed to Notify regardless of payload; the session decides whether a
// refresh is due. Callers cancel the subscription on teardown and may wait
// on the returned channel for the pump to drain.
func Listen(events <-chan changefeed.Event, s *Session) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range events {
			s.Notify()
		}
	}()
	return done
}
