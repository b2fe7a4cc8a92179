// internal/app/features/groups/members.go
package groups

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleRemoveMember handles DELETE /groups/{id}/members/{membershipID}.
// Members may remove themselves (leave, or decline-by-leave); owners and
// admins may remove others; the owner's row can only be removed by the
// owner. Removal is a hard delete, so removing an already-removed row
// reports not found.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	membershipID, ok := pathID(w, r, "membershipID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}
	rows, err := h.Memberships.ListByGroup(ctx, groupID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}

	target := -1
	for i := range rows {
		if rows[i].ID == membershipID {
			target = i
			break
		}
	}
	if target == -1 {
		errors.WriteError(w, h.Log, faults.ErrNotFound)
		return
	}

	if d := grouppolicy.CanRemoveMember(g, rows, rows[target], userID); !d.Allowed {
		errors.WriteError(w, h.Log, fmt.Errorf("%s: %w", d.Reason, faults.ErrForbidden))
		return
	}

	deleted, err := h.Memberships.Remove(ctx, membershipID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	if deleted == 0 {
		errors.WriteError(w, h.Log, faults.ErrNotFound)
		return
	}

	h.Log.Info("member removed",
		zap.String("group_id", groupID.Hex()),
		zap.String("membership_id", membershipID.Hex()),
		zap.String("removed_by", userID.Hex()))
	errors.WriteJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
