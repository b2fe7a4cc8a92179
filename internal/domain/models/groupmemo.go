// internal/domain/models/groupmemo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMemo links one memo into one group. Sharing a memo to N groups writes
// N independent rows; each insert succeeds or fails on its own, so a failed
// share never rolls back the memo or the other links.
//
// AddedBy records who performed the share action. It can differ from the
// memo's author (an admin re-sharing someone's memo); display color is always
// resolved from the author, not AddedBy.
type GroupMemo struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	MemoID  primitive.ObjectID `bson:"memo_id" json:"memo_id"`
	AddedBy primitive.ObjectID `bson:"added_by" json:"added_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
