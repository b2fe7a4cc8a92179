// internal/app/features/memos/list.go
package memos

import (
	"context"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/store/queries/scopedview"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServePersonalMemos handles GET /memos: the caller's own recordings,
// newest first, each carrying the personal pin color.
func (h *Handler) ServePersonalMemos(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := scopedview.ForPersonal(ctx, h.DB, userID)
	if err != nil {
		h.Log.Error("personal scope load failed",
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
		errors.WriteError(w, h.Log, err)
		return
	}
	if entries == nil {
		entries = []scopedview.Entry{}
	}
	errors.WriteJSON(w, http.StatusOK, entries)
}
