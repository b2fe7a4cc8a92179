// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateHandle is returned when creating a user whose handle is taken.
var ErrDuplicateHandle = errors.New("a user with this handle already exists")

var errEmptyHandle = errors.New("handle is required")

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByHandle looks up a user by case-insensitive handle.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"handle_ci": normalize.Handle(handle)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleSub looks up a Google-linked user by Google's stable account
// ID. Returns mongo.ErrNoDocuments if no account is linked.
func (s *Store) GetByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	filter := bson.M{"google_sub": sub, "auth_method": models.AuthMethodGoogle}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByIDs bulk-fetches users by ID in one round trip. Missing IDs are
// silently absent from the result; callers joining against memberships must
// tolerate a deleted user.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user after normalizing fields. The handle backs a
// unique index; duplicates map to ErrDuplicateHandle.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Handle = normalize.Name(u.Handle)
	u.HandleCI = normalize.Handle(u.Handle)
	if u.HandleCI == "" {
		return models.User{}, errEmptyHandle
	}
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthMethodPassword
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateHandle
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateProfile updates the mutable profile fields. The identifier and
// handle are immutable here; only the owning user may call this (enforced
// by the handler).
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, avatarPath string) error {
	set := bson.M{
		"first_name": normalize.Name(firstName),
		"last_name":  normalize.Name(lastName),
		"updated_at": time.Now().UTC(),
	}
	if avatarPath != "" {
		set["avatar_path"] = avatarPath
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
