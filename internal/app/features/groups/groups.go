// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	groupstore "github.com/kdawg1232/memoserver/internal/app/store/groups"
	"github.com/kdawg1232/memoserver/internal/app/store/queries/groupdirectory"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateGroup handles POST /groups. The creator becomes an accepted
// owner in the same operation; the new group is immediately visible in
// their directory.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := normalize.Name(req.Name)
	if name == "" {
		errors.WriteMessage(w, http.StatusBadRequest, "group name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.CreateWithOwner(ctx, models.Group{
		Name:        name,
		Description: normalize.Name(req.Description),
		CreatorID:   userID,
	})
	if err != nil {
		if err == groupstore.ErrDuplicateGroupName {
			errors.WriteMessage(w, http.StatusConflict, "a group with this name already exists")
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("creator_id", userID.Hex()))

	full, err := groupdirectory.GetGroupByID(ctx, h.DB, g.ID, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusCreated, full)
}

// ServeGroupsList handles GET /groups: every group the user belongs to or
// created, with members and accepted-member counts.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := groupdirectory.ListGroupsForUser(ctx, h.DB, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	if list == nil {
		list = []groupdirectory.GroupWithMembers{}
	}
	errors.WriteJSON(w, http.StatusOK, map[string]any{"groups": list})
}

// ServeGroupView handles GET /groups/{id}.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	full, err := groupdirectory.GetGroupByID(ctx, h.DB, groupID, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, full)
}

type updateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleUpdateGroup handles PATCH /groups/{id}. Owners and admins may
// rename a group or change its description; an empty name leaves the
// current name in place.
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
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
	if d := grouppolicy.CanEditInfo(g, rows, userID); !d.Allowed {
		errors.WriteError(w, h.Log, fmt.Errorf("%s: %w", d.Reason, faults.ErrForbidden))
		return
	}

	err = h.Groups.UpdateInfo(ctx, groupID, normalize.Name(req.Name), normalize.Name(req.Description))
	if err != nil {
		if err == groupstore.ErrDuplicateGroupName {
			errors.WriteMessage(w, http.StatusConflict, "a group with this name already exists")
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	full, err := groupdirectory.GetGroupByID(ctx, h.DB, groupID, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, full)
}

// HandleDeleteGroup handles DELETE /groups/{id}. Only the creator may
// dissolve a group; memberships and share links go with it.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}
	if g.CreatorID != userID {
		errors.WriteError(w, h.Log, faults.ErrForbidden)
		return
	}

	if _, err := h.Groups.Delete(ctx, groupID); err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	if _, err := h.GroupMemos.DeleteByGroup(ctx, groupID); err != nil {
		// Dangling links are dropped by the view composer; log and move on.
		h.Log.Warn("group delete: share link cleanup failed",
			zap.Error(err),
			zap.String("group_id", groupID.Hex()))
	}

	h.Log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.String("deleted_by", userID.Hex()))
	errors.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
