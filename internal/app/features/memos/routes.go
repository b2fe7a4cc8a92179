// internal/app/features/memos/routes.go
package memos

import (
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
)

// Routes returns the router for the memos feature.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// PERSONAL SCOPE
		pr.Get("/", h.ServePersonalMemos)

		// SHARE (create + fan-out)
		pr.Post("/", h.HandleShareMemo)

		// PLAYBACK
		pr.Get("/{id}/audio", h.ServeAudio)

		// DELETE
		pr.Delete("/{id}", h.HandleDeleteMemo)
	})

	return r
}
