// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
}

var ErrDuplicateGroupName = errors.New("a group with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("groups"),
		memberships: db.Collection("group_memberships"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListByIDs bulk-fetches group documents in one round trip.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListCreatedBy returns the groups a user created, regardless of whether the
// owner membership side effect fired. The group directory unions this with
// accepted memberships as a defensive check.
func (s *Store) ListCreatedBy(ctx context.Context, creatorID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"creator_id": creatorID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateWithOwner inserts the group and the creator's owner/accepted
// membership in one call. Callers must not insert the owner row themselves;
// a second insert would trip the unique (group_id, user_id) index.
//
// The two inserts are not transactional (standalone Mongo has no
// multi-document transactions). If the membership insert fails the group
// document is removed again so a half-created group is never observable;
// ListCreatedBy still gives the creator access if even that cleanup fails.
func (s *Store) CreateWithOwner(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}

	owner := models.GroupMembership{
		GroupID:   g.ID,
		UserID:    g.CreatorID,
		Role:      models.RoleOwner,
		Status:    models.StatusAccepted,
		Color:     models.PaletteColor(0),
		CreatedAt: now,
	}
	if _, err := s.memberships.InsertOne(ctx, owner); err != nil {
		_, _ = s.c.DeleteOne(ctx, bson.M{"_id": g.ID})
		return models.Group{}, err
	}
	return g, nil
}

// UpdateInfo updates the group's name and description.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc string) error {
	set := bson.M{
		"description": desc,
		"updated_at":  time.Now().UTC(),
	}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateGroupName
	}
	return err
}

// Delete removes a group and all of its membership rows. Returns the number
// of group documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		_, _ = s.memberships.DeleteMany(ctx, bson.M{"group_id": id})
	}
	return res.DeletedCount, nil
}
