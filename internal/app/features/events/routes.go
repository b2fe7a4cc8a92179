// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
)

// Routes returns the router for the events feature. The stream itself is
// authenticated by stream token, not by session, so only the token
// endpoint sits behind the session middleware.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/token", h.ServeToken)
	})

	r.Get("/", h.ServeStream)

	return r
}
