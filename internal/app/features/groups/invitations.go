// internal/app/features/groups/invitations.go
package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	membershipstore "github.com/kdawg1232/memoserver/internal/app/store/memberships"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type inviteRequest struct {
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

// HandleInvite handles POST /groups/{id}/invitations. Only the creator or
// an accepted owner/admin may invite; the invitee starts pending and does
// not count toward member_count until they accept.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
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
	if d := grouppolicy.CanInvite(g, rows, userID); !d.Allowed {
		errors.WriteError(w, h.Log, fmt.Errorf("%s: %w", d.Reason, faults.ErrForbidden))
		return
	}

	invitee, err := h.Users.GetByHandle(ctx, req.Handle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, fmt.Errorf("no user with that handle: %w", faults.ErrNotFound))
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	m, err := h.Memberships.Invite(ctx, groupID, invitee.ID, userID, req.Role)
	if err != nil {
		if err == membershipstore.ErrAlreadyMember {
			errors.WriteError(w, h.Log, faults.ErrAlreadyMember)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("member invited",
		zap.String("group_id", groupID.Hex()),
		zap.String("invitee_id", invitee.ID.Hex()),
		zap.String("inviter_id", userID.Hex()),
		zap.String("role", m.Role))
	errors.WriteJSON(w, http.StatusCreated, m)
}

// invitationView is a pending invitation joined with its group, so a client
// can render "X invited you to Y" without extra round trips.
type invitationView struct {
	Membership models.GroupMembership `json:"membership"`
	Group      models.Group           `json:"group"`
	Inviter    *models.User           `json:"inviter,omitempty"`
}

// ServeInvitations handles GET /groups/invitations: the current user's
// pending invitations.
func (h *Handler) ServeInvitations(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Memberships.ListPendingForUser(ctx, userID)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}

	groupIDs := make([]primitive.ObjectID, 0, len(pending))
	inviterIDs := make([]primitive.ObjectID, 0, len(pending))
	for _, m := range pending {
		groupIDs = append(groupIDs, m.GroupID)
		if m.InviterID != nil {
			inviterIDs = append(inviterIDs, *m.InviterID)
		}
	}

	groupRows, err := h.Groups.ListByIDs(ctx, groupIDs)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}
	inviters, err := h.Users.ListByIDs(ctx, inviterIDs)
	if err != nil {
		errors.WriteError(w, h.Log, err)
		return
	}

	groupByID := make(map[primitive.ObjectID]models.Group, len(groupRows))
	for _, g := range groupRows {
		groupByID[g.ID] = g
	}
	inviterByID := make(map[primitive.ObjectID]models.User, len(inviters))
	for _, u := range inviters {
		inviterByID[u.ID] = u
	}

	out := make([]invitationView, 0, len(pending))
	for _, m := range pending {
		g, ok := groupByID[m.GroupID]
		if !ok {
			continue // group dissolved while the invitation sat pending
		}
		iv := invitationView{Membership: m, Group: g}
		if m.InviterID != nil {
			if u, ok := inviterByID[*m.InviterID]; ok {
				iv.Inviter = &u
			}
		}
		out = append(out, iv)
	}
	errors.WriteJSON(w, http.StatusOK, map[string]any{"invitations": out})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// HandleRespond handles POST /groups/invitations/{membershipID}. Only the
// invitee may respond, and only while the invitation is still pending; a
// repeat response reports not found rather than silently succeeding twice.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	membershipID, ok := pathID(w, r, "membershipID")
	if !ok {
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Memberships.Respond(ctx, membershipID, userID, req.Accept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, fmt.Errorf("no pending invitation: %w", faults.ErrNotFound))
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("invitation answered",
		zap.String("membership_id", m.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("status", m.Status))
	errors.WriteJSON(w, http.StatusOK, m)
}
