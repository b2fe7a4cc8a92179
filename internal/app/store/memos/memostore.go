// internal/app/store/memos/memostore.go
package memostore

import (
	"context"
	"errors"
	"time"

	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	links *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("memos"),
		links: db.Collection("group_memos"),
	}
}

var errBadDuration = errors.New("duration_seconds must be positive")

// GetByID loads a memo by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Memo, error) {
	var m models.Memo
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Memo{}, err
	}
	return m, nil
}

// Insert persists a new memo row. The audio blob must already be uploaded;
// AudioPath is its object-store key. The duration is trusted as reported by
// the capture layer except that non-positive values are rejected.
func (s *Store) Insert(ctx context.Context, m models.Memo) (models.Memo, error) {
	if m.DurationSeconds <= 0 {
		return models.Memo{}, errBadDuration
	}
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Memo{}, err
	}
	return m, nil
}

// ListByAuthor returns the author's memos, newest first with a stable
// ID tie-break. This is the personal scope's data set.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Memo, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"author_id": authorID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memos []models.Memo
	if err := cur.All(ctx, &memos); err != nil {
		return nil, err
	}
	return memos, nil
}

// ListByIDs bulk-fetches memos in one round trip. The result preserves no
// particular order; callers sort.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Memo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memos []models.Memo
	if err := cur.All(ctx, &memos); err != nil {
		return nil, err
	}
	return memos, nil
}

// DeleteDanglingLinks removes group_memos rows whose memo no longer
// exists. The cascade in DeleteOwned is best-effort, so a crash between
// the memo delete and the link delete can leave dangling rows; the scoped
// view composer tolerates them, and this sweep reclaims them.
func (s *Store) DeleteDanglingLinks(ctx context.Context) (int64, error) {
	memoIDs, err := s.links.Distinct(ctx, "memo_id", bson.M{})
	if err != nil {
		return 0, err
	}
	if len(memoIDs) == 0 {
		return 0, nil
	}

	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": memoIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	live := make(map[primitive.ObjectID]struct{}, len(memoIDs))
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		live[row.ID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	var dangling []primitive.ObjectID
	for _, raw := range memoIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			continue
		}
		if _, exists := live[id]; !exists {
			dangling = append(dangling, id)
		}
	}
	if len(dangling) == 0 {
		return 0, nil
	}

	res, err := s.links.DeleteMany(ctx, bson.M{"memo_id": bson.M{"$in": dangling}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOwned removes a memo if and only if authorID is its author, then
// cascades to any group_memos rows referencing it. Returns the number of
// memo documents deleted (0 means not found or not the author; the caller
// distinguishes by loading the row first if it cares).
func (s *Store) DeleteOwned(ctx context.Context, id, authorID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "author_id": authorID})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		// Cascade. A failure here leaves dangling links that the scoped
		// view composer already tolerates (links without a memo are
		// dropped at join time).
		_, _ = s.links.DeleteMany(ctx, bson.M{"memo_id": id})
	}
	return res.DeletedCount, nil
}
