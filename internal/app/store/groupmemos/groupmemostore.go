// internal/app/store/groupmemos/groupmemostore.go
package groupmemostore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists group_memos link rows. Each link stands alone: the fan-out
// engine inserts one row per target group and aggregates outcomes, so this
// store deliberately has no batch insert with all-or-nothing semantics.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memos")}
}

// ErrAlreadyShared is returned when the memo is already linked to the group.
var ErrAlreadyShared = errors.New("memo is already shared to this group")

// Insert links one memo into one group.
func (s *Store) Insert(ctx context.Context, groupID, memoID, addedBy primitive.ObjectID) (models.GroupMemo, error) {
	gm := models.GroupMemo{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		MemoID:    memoID,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, gm); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMemo{}, ErrAlreadyShared
		}
		return models.GroupMemo{}, err
	}
	return gm, nil
}

// ListByGroup returns the link rows for a group, newest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMemo, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var links []models.GroupMemo
	if err := cur.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// ListByMemo returns every link row for a memo, one per group it is
// shared to.
func (s *Store) ListByMemo(ctx context.Context, memoID primitive.ObjectID) ([]models.GroupMemo, error) {
	cur, err := s.c.Find(ctx, bson.M{"memo_id": memoID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var links []models.GroupMemo
	if err := cur.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteByMemo removes every link row for a memo. Returns the number of
// documents deleted.
func (s *Store) DeleteByMemo(ctx context.Context, memoID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"memo_id": memoID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes every link row for a group (used when a group is
// deleted). The memos themselves are untouched; they remain in their
// authors' personal scopes.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
