// internal/app/policy/grouppolicy.go
package grouppolicy

import (
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is the tagged result of an access check: Allowed, or Denied with
// a reason. The backing store enforces the same rules; these checks are
// re-asserted locally as defense in depth against a permissive store
// misconfiguration, and a store-side rejection remains authoritative even
// when the local check passed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the allowed decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a denied decision with a reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// CanView decides whether userID may see the group and its content.
// Creator status and an accepted owner membership are checked as two
// independent facts and unioned: creator wins regardless of any stray
// membership row (a declined or pending row for the creator never locks
// them out).
func CanView(g models.Group, memberships []models.GroupMembership, userID primitive.ObjectID) Decision {
	if g.CreatorID == userID {
		return Allow()
	}
	for _, m := range memberships {
		if m.UserID == userID && m.Status == models.StatusAccepted {
			return Allow()
		}
	}
	return Deny("not a member of this group")
}

// CanInvite decides whether userID may send invitations for the group:
// the creator, or an accepted member holding the owner or admin role.
func CanInvite(g models.Group, memberships []models.GroupMembership, userID primitive.ObjectID) Decision {
	if g.CreatorID == userID {
		return Allow()
	}
	for _, m := range memberships {
		if m.UserID == userID && m.CanInvite() {
			return Allow()
		}
	}
	return Deny("only owners and admins can invite")
}

// CanEditInfo decides whether userID may change the group's name or
// description: the creator, or an accepted member holding the owner or
// admin role.
func CanEditInfo(g models.Group, memberships []models.GroupMembership, userID primitive.ObjectID) Decision {
	if g.CreatorID == userID {
		return Allow()
	}
	for _, m := range memberships {
		if m.UserID == userID && m.Status == models.StatusAccepted &&
			(m.Role == models.RoleOwner || m.Role == models.RoleAdmin) {
			return Allow()
		}
	}
	return Deny("only owners and admins can edit group info")
}

// CanRemoveMember decides whether actorID may delete the membership row m.
// Members may remove themselves (leave); otherwise removal requires invite
// rights. An owner's row can only be removed by that owner — groups never
// lose their last owner to someone else's action.
func CanRemoveMember(g models.Group, memberships []models.GroupMembership, m models.GroupMembership, actorID primitive.ObjectID) Decision {
	if m.UserID == actorID {
		return Allow()
	}
	if m.Role == models.RoleOwner {
		return Deny("an owner can only remove themselves")
	}
	return CanInvite(g, memberships, actorID)
}

// CanShareTo decides whether userID may share a memo into the group.
// Any accepted member (or the creator) may share.
func CanShareTo(g models.Group, memberships []models.GroupMembership, userID primitive.ObjectID) Decision {
	return CanView(g, memberships, userID)
}
