// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"github.com/kdawg1232/memoserver/internal/app/system/authutil"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/app/system/ratelimit"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the password sign-in flow.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    ratelimit.NewLoginLimiter(),
		Log:        logger,
	}
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// ServeLogin handles POST /login.
//
// Wrong handle and wrong password produce the same response, so the
// endpoint cannot be used to enumerate accounts.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	handle := normalize.Handle(req.Handle)
	if handle == "" || req.Password == "" {
		errors.WriteMessage(w, http.StatusBadRequest, "handle and password are required")
		return
	}

	if allowed, reason := h.Limiter.Check(r, handle); !allowed {
		errors.WriteMessage(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByHandle(ctx, handle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteMessage(w, http.StatusUnauthorized, "invalid handle or password")
			return
		}
		h.Log.Error("login: lookup failed", zap.Error(err), zap.String("handle", handle))
		errors.WriteMessage(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	if u.AuthMethod != models.AuthMethodPassword || !authutil.CheckPassword(u.PasswordHash, req.Password) {
		errors.WriteMessage(w, http.StatusUnauthorized, "invalid handle or password")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:         u.ID.Hex(),
		Handle:     u.Handle,
		Name:       u.DisplayName(),
		AuthMethod: u.AuthMethod,
	}); err != nil {
		h.Log.Error("login: session save failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		errors.WriteMessage(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	h.Limiter.ResetHandle(handle)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("handle", u.Handle))

	errors.WriteJSON(w, http.StatusOK, map[string]any{
		"id":     u.ID.Hex(),
		"handle": u.Handle,
		"name":   u.DisplayName(),
	})
}
