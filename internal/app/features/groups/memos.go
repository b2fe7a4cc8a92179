// internal/app/features/groups/memos.go
package groups

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

// ServeGroupMemos handles GET /groups/{id}/memos: every memo shared into
// the group, newest first, each colored by its author's membership color.
// Visibility is the group's: any accepted member (or the creator) sees the
// same composed set.
func (h *Handler) ServeGroupMemos(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := scopedview.ForGroup(ctx, h.DB, groupID, userID)
	if err != nil {
		if faults.HTTPStatus(err) >= 500 {
			h.Log.Error("group scope load failed",
				zap.String("group_id", groupID.Hex()),
				zap.Error(err))
		}
		errors.WriteError(w, h.Log, err)
		return
	}
	if entries == nil {
		entries = []scopedview.Entry{}
	}
	errors.WriteJSON(w, http.StatusOK, entries)
}
