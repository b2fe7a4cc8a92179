// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"github.com/kdawg1232/memoserver/internal/app/system/authutil"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns password-based account creation.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler constructs a signup Handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Handle    string `json:"handle"`
	Password  string `json:"password"`
}

// ServeSignup handles POST /signup. A successful sign-up also signs the
// new user in.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	handle := normalize.Handle(req.Handle)
	if err := authutil.ValidateHandle(handle); err != nil {
		errors.WriteMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		if err == authutil.ErrPasswordTooWeak {
			errors.WriteMessage(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		errors.WriteError(w, h.Log, err)
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

	u, err := h.Users.Create(ctx, models.User{
		FirstName:    first,
		LastName:     last,
		Handle:       handle,
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: hash,
	})
	if err != nil {
		if err == userstore.ErrDuplicateHandle {
			errors.WriteMessage(w, http.StatusConflict, "handle is already taken")
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:         u.ID.Hex(),
		Handle:     u.Handle,
		Name:       u.DisplayName(),
		AuthMethod: u.AuthMethod,
	}); err != nil {
		h.Log.Error("signup: session save failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()), zap.String("handle", u.Handle))
	errors.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":     u.ID.Hex(),
		"handle": u.Handle,
		"name":   u.DisplayName(),
	})
}
