// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the userinfo endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeUserInfo) // mounted under /userinfo
	return r
}
