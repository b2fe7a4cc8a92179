// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for the Google OAuth endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)               // GET /auth/google
	r.Get("/callback", h.ServeCallback)    // GET /auth/google/callback
	return r
}
