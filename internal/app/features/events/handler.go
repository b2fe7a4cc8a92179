// internal/app/features/events/handler.go
package events

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/changefeed"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/streamtoken"
	"go.uber.org/zap"
)

// Handler serves the change-notification stream. Clients first trade their
// session for a short-lived stream token (EventSource cannot set headers,
// so the token rides the query string), then open the SSE stream with it.
type Handler struct {
	Feed   *changefeed.Feed
	Tokens *streamtoken.Issuer
	Log    *zap.Logger
}

func NewHandler(feed *changefeed.Feed, tokens *streamtoken.Issuer, logger *zap.Logger) *Handler {
	return &Handler{Feed: feed, Tokens: tokens, Log: logger}
}

// ServeToken handles GET /events/token. Requires a signed-in session.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	token, err := h.Tokens.Issue(userID.Hex())
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ServeStream handles GET /events?token=... — a Server-Sent Events stream
// of change hints. Each event tells the client that something it may be
// displaying changed; the client re-fetches through its reconciler rather
// than trusting the event payload as state. Delivery is best-effort: a
// slow client loses hints, never correctness, because every reconcile
// refetches the full scope.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		errors.WriteMessage(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.Feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client it is connected before the first change arrives.
	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	h.Log.Info("event stream opened", zap.String("user_id", userID))

	for {
		select {
		case <-r.Context().Done():
			h.Log.Info("event stream closed", zap.String("user_id", userID))
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
