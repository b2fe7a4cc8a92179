// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
)

// Routes returns the router for the profile endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeProfile)
	r.Put("/", h.HandleUpdateProfile)

	return r
}
