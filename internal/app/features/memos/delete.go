// internal/app/features/memos/delete.go
package memos

import (
	"context"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDeleteMemo handles DELETE /memos/{id}. Only the author may delete;
// the store cascades the group links in the same call. The audio blob is
// deleted best-effort afterward — a failed blob delete leaves an orphan for
// the maintenance sweep, never a half-deleted memo.
func (h *Handler) HandleDeleteMemo(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	memoID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memo, err := h.Memos.GetByID(ctx, memoID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}
	if memo.AuthorID != userID {
		errors.WriteError(w, h.Log, faults.ErrForbidden)
		return
	}

	deleted, err := h.Memos.DeleteOwned(ctx, memoID, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	if deleted == 0 {
		// Raced with another delete of the same memo.
		errors.WriteError(w, h.Log, faults.ErrNotFound)
		return
	}

	if h.Storage != nil {
		if err := h.Storage.Delete(ctx, memo.AudioPath); err != nil {
			h.Log.Warn("audio blob delete failed",
				zap.String("audio_path", memo.AudioPath),
				zap.Error(err))
		}
	}

	errors.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
