// internal/domain/models/memo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMemoDurationSeconds is the recording cap enforced at capture time.
// The server trusts durations at or under the cap but rejects non-positive
// values on shared memos.
const MaxMemoDurationSeconds = 30

// Memo is an audio clip anchored to a coordinate. It is created once by its
// author and deleted only by its author; group_memos rows referencing it are
// removed by cascade at the store layer.
type Memo struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`

	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`

	// AudioPath is the object-store key of the uploaded clip, not a URL.
	AudioPath       string `bson:"audio_path" json:"audio_path"`
	DurationSeconds int    `bson:"duration_seconds" json:"duration_seconds"`
	SizeBytes       int64  `bson:"size_bytes" json:"size_bytes"`

	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
