// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that records memos and belongs to groups.
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the group_memberships collection to discover a user's groups.
//   - Handle is the unique, human-facing identifier (e.g. "karan_d");
//     HandleCI is the folded form backing the unique index.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	Handle     string             `bson:"handle" json:"handle"`
	HandleCI   string             `bson:"handle_ci" json:"handle_ci"`
	AvatarPath string             `bson:"avatar_path,omitempty" json:"avatar_path,omitempty"`

	AuthMethod   string `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // "password" | "google"
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	GoogleSub    string `bson:"google_sub,omitempty" json:"-"` // Google's stable account ID

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName joins the name parts, falling back to the handle when both
// parts are blank.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Handle
	}
	return name
}
