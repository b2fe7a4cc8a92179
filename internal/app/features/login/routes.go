// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns the router for the login endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeLogin) // mounted under /login
	return r
}
