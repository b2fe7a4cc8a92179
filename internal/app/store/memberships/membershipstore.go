// internal/app/store/memberships/membershipstore.go
package membershipstore

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

// Store persists the membership rows that drive the invitation lifecycle:
//
//	(created pending) ── accept ──> accepted
//	                 └── decline ─> declined
//
// Both transitions are terminal for the invitation instance and are guarded
// updates: the filter pins status=pending, so a stale second call matches
// nothing and surfaces as mongo.ErrNoDocuments rather than silently
// succeeding. Removal is a hard delete.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

var (
	// ErrAlreadyMember is returned when an active membership row already
	// exists for the (group, user) pair.
	ErrAlreadyMember = errors.New("user is already a member of this group")

	errBadRole = errors.New(`role must be "member" or "admin"`)
)

// Invite creates a pending membership for (groupID, userID). Role may be
// member or admin; owner rows are only ever written by group creation.
// The new member's display color is drawn from the palette based on how
// many rows the group already has.
//
// A pending or accepted row blocks the invitation (ErrAlreadyMember). A
// declined row does not: a decline is terminal only for that invitation
// instance, so the stale row is replaced with a fresh pending one.
func (s *Store) Invite(ctx context.Context, groupID, userID, inviterID primitive.ObjectID, role string) (models.GroupMembership, error) {
	if role != models.RoleMember && role != models.RoleAdmin {
		return models.GroupMembership{}, errBadRole
	}

	n, err := s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return models.GroupMembership{}, err
	}

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		Status:    models.StatusPending,
		InviterID: &inviterID,
		Color:     models.PaletteColor(int(n)),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if !wafflemongo.IsDup(err) {
			return models.GroupMembership{}, err
		}

		existing, gerr := s.GetForUser(ctx, groupID, userID)
		if gerr != nil {
			return models.GroupMembership{}, gerr
		}
		if existing.Status != models.StatusDeclined {
			return models.GroupMembership{}, ErrAlreadyMember
		}

		// Replace the declined row in place. The _id and color carry
		// over so the member's slot stays stable; the filter pins
		// status=declined so a race with a concurrent accept loses.
		m.ID = existing.ID
		m.Color = existing.Color
		rerr := s.c.FindOneAndReplace(ctx,
			bson.M{"_id": existing.ID, "status": models.StatusDeclined},
			m,
		).Err()
		if rerr == mongo.ErrNoDocuments {
			return models.GroupMembership{}, ErrAlreadyMember
		}
		if rerr != nil {
			return models.GroupMembership{}, rerr
		}
	}
	return m, nil
}

// GetByID loads a membership row.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupMembership, error) {
	var m models.GroupMembership
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// GetForUser returns the membership row for (groupID, userID) regardless of
// status. Returns mongo.ErrNoDocuments when none exists.
func (s *Store) GetForUser(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	var m models.GroupMembership
	if err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m); err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Respond applies the invited user's decision to a pending invitation.
// Only the invited user may respond, so userID is part of the filter along
// with status=pending. A row that does not exist, belongs to someone else,
// or already left pending all surface the same way: mongo.ErrNoDocuments.
func (s *Store) Respond(ctx context.Context, membershipID, userID primitive.ObjectID, accepted bool) (models.GroupMembership, error) {
	status := models.StatusDeclined
	if accepted {
		status = models.StatusAccepted
	}
	now := time.Now().UTC()

	var m models.GroupMembership
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": membershipID, "user_id": userID, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": status, "responded_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Remove hard-deletes a membership row. Returns the number of documents
// deleted (0 or 1); callers treat 0 as not-found — a repeated remove is an
// error, not an idempotent success.
func (s *Store) Remove(ctx context.Context, membershipID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": membershipID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByGroup returns all membership rows for a group (every status).
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByGroups bulk-fetches membership rows for many groups in one round
// trip. Used by the group directory to avoid an N+1 per group.
func (s *Store) ListByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.GroupMembership, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListPendingForUser returns the user's open invitations.
func (s *Store) ListPendingForUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "status": models.StatusPending})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// AcceptedGroupIDs returns the IDs of groups where the user holds an
// accepted membership.
func (s *Store) AcceptedGroupIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"user_id": userID, "status": models.StatusAccepted},
		options.Find().SetProjection(bson.M{"group_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		GroupID primitive.ObjectID `bson:"group_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GroupID)
	}
	return ids, nil
}

// CountAccepted returns the count of accepted memberships for a group.
// Pending and declined rows never count toward a group's displayed size.
func (s *Store) CountAccepted(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID, "status": models.StatusAccepted})
}

// DeleteByGroup removes all memberships for a group. Returns the number of
// documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
