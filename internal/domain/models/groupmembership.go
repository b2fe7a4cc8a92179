// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles. The creator's row is written with RoleOwner; everyone
// else starts as whatever the inviter chose (normally RoleMember).
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Invitation statuses. Pending rows transition exactly once, to accepted or
// declined, and only by the invited user. Removal is a hard delete, never a
// status.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// GroupMembership is the authoritative join between users and groups.
// Exactly one document per (group_id, user_id), enforced by a unique index.
type GroupMembership struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID  `bson:"group_id" json:"group_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role      string              `bson:"role" json:"role"`
	Status    string              `bson:"status" json:"status"`
	InviterID *primitive.ObjectID `bson:"inviter_id,omitempty" json:"inviter_id,omitempty"`

	// Color is this member's display color within the group. It is a
	// rendering attribute only, assigned when the row is created and read
	// back by the scoped view composer.
	Color string `bson:"color" json:"color"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	RespondedAt *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// IsActive reports whether the row grants membership today (accepted).
func (m GroupMembership) IsActive() bool { return m.Status == StatusAccepted }

// CanInvite reports whether a member holding this row may send invitations.
func (m GroupMembership) CanInvite() bool {
	return m.Status == StatusAccepted && (m.Role == RoleOwner || m.Role == RoleAdmin)
}

// ValidRole reports whether role is one of the membership roles.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleMember
}

// PersonalColor is the single fixed color for the personal (non-group)
// scope. Per-group assignments never apply there.
const PersonalColor = "#5E5CE6"

// DefaultMemberColor is the fallback when a member has no assigned color.
const DefaultMemberColor = "#8E8E93"

// MemberColorPalette is cycled through when membership rows are created.
var MemberColorPalette = []string{
	"#FF6B6B", // coral
	"#4ECDC4", // teal
	"#FFB340", // amber
	"#6BCB77", // green
	"#4D96FF", // blue
	"#C77DFF", // violet
	"#FF8FAB", // pink
	"#A8763E", // tan
}

// PaletteColor returns the palette entry for the nth membership in a group.
func PaletteColor(n int) string {
	if n < 0 {
		n = 0
	}
	return MemberColorPalette[n%len(MemberColorPalette)]
}
