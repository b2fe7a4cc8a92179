// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own profile.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		Log:   logger,
	}
}

// profileResponse is what the client renders on the account screen.
type profileResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Handle     string `json:"handle"`
	AvatarPath string `json:"avatar_path,omitempty"`
	AuthMethod string `json:"auth_method"`
}

func toResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:         u.ID.Hex(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Handle:     u.Handle,
		AvatarPath: u.AvatarPath,
		AuthMethod: u.AuthMethod,
	}
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, toResponse(u))
}

type updateRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AvatarPath string `json:"avatar_path"`
}

// HandleUpdateProfile handles PUT /profile. Handles are permanent; only
// display names and the avatar can change here.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	first := normalize.Name(req.FirstName)
	last := normalize.Name(req.LastName)
	if first == "" && last == "" {
		errors.WriteMessage(w, http.StatusBadRequest, "a first or last name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, first, last, req.AvatarPath); err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, toResponse(u))
}
