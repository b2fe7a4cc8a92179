// Package authz resolves the acting user from the request context.
//
// Unlike role-per-site systems, every role in this app is scoped to a group
// and lives on the membership row, so this package only answers "who is
// calling", never "what may they do" — that is policy/grouppolicy's job.
package authz

import (
	"net/http"

	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's Mongo ObjectID, handle, and a found flag.
// If no user is present or the stored ID is malformed, it returns
// (NilObjectID, "", false) — callers can trust ok=true means a valid,
// authenticated user. A malformed ID fails closed; it indicates session
// corruption, not a user error.
func UserCtx(r *http.Request) (userID primitive.ObjectID, handle string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	return uid, u.Handle, true
}

// IsSelf reports whether the caller is the given user.
func IsSelf(r *http.Request, userID primitive.ObjectID) bool {
	uid, _, ok := UserCtx(r)
	return ok && uid == userID
}
