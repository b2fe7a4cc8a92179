// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
)

// Routes returns the router for the groups feature.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// DIRECTORY
		pr.Get("/", h.ServeGroupsList)

		// CREATE
		pr.Post("/", h.HandleCreateGroup)

		// INVITATIONS (current user's pending ones, and responses)
		pr.Get("/invitations", h.ServeInvitations)
		pr.Post("/invitations/{membershipID}", h.HandleRespond)

		// VIEW
		pr.Get("/{id}", h.ServeGroupView)
		pr.Get("/{id}/memos", h.ServeGroupMemos)

		// UPDATE / DELETE
		pr.Patch("/{id}", h.HandleUpdateGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// MEMBERSHIP
		pr.Post("/{id}/invitations", h.HandleInvite)
		pr.Delete("/{id}/members/{membershipID}", h.HandleRemoveMember)
	})

	return r
}
