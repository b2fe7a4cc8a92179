// Package groupdirectory aggregates a user's groups with their member and
// user records. It is a read-only query layer: the union of the user's
// accepted memberships and the groups they created, hydrated with exactly
// three batched round trips (groups, memberships, users) — never one query
// per group.
package groupdirectory

import (
	"context"
	"fmt"

	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	groupstore "github.com/kdawg1232/memoserver/internal/app/store/groups"
	membershipstore "github.com/kdawg1232/memoserver/internal/app/store/memberships"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Member is one membership row joined with its user record. User may be the
// zero value when the account was deleted out from under the membership.
type Member struct {
	MembershipID primitive.ObjectID `json:"membership_id"`
	User         models.User        `json:"user"`
	Role         string             `json:"role"`
	Status       string             `json:"status"`
	Color        string             `json:"color"`
}

// GroupWithMembers is a group hydrated with its members. MemberCount counts
// accepted memberships only; pending and declined rows are listed but do not
// count toward the displayed size.
type GroupWithMembers struct {
	Group       models.Group `json:"group"`
	Members     []Member     `json:"members"`
	MemberCount int          `json:"member_count"`
}

// ListGroupsForUser returns every group the user belongs to or created.
//
// Algorithm:
//  1. collect group IDs from the user's accepted memberships,
//  2. collect group IDs the user created (defensive union, in case the
//     owner-membership side effect did not fire),
//  3. union without duplicates,
//  4. bulk-fetch groups, memberships, and users in three batched trips,
//  5. join in memory.
//
// Ordering is stable for a given data set (insertion order of the union)
// but otherwise unspecified.
func ListGroupsForUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]GroupWithMembers, error) {
	memberships := membershipstore.New(db)
	groups := groupstore.New(db)

	acceptedIDs, err := memberships.AcceptedGroupIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := groups.ListCreatedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]struct{}, len(acceptedIDs)+len(created))
	ids := make([]primitive.ObjectID, 0, len(acceptedIDs)+len(created))
	for _, id := range acceptedIDs {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, g := range created {
		if _, dup := seen[g.ID]; !dup {
			seen[g.ID] = struct{}{}
			ids = append(ids, g.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return hydrate(ctx, db, ids)
}

// GetGroupByID loads one group with members, re-asserting locally that the
// requesting user is an accepted member or the creator. The backing store
// enforces the same rule; the local check is deliberate redundancy, so a
// misconfigured store policy cannot leak group content.
func GetGroupByID(ctx context.Context, db *mongo.Database, groupID, requestingUser primitive.ObjectID) (GroupWithMembers, error) {
	g, err := groupstore.New(db).GetByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return GroupWithMembers{}, faults.ErrNotFound
		}
		return GroupWithMembers{}, err
	}
	rows, err := membershipstore.New(db).ListByGroup(ctx, groupID)
	if err != nil {
		return GroupWithMembers{}, err
	}

	if d := grouppolicy.CanView(g, rows, requestingUser); !d.Allowed {
		return GroupWithMembers{}, fmt.Errorf("%s: %w", d.Reason, faults.ErrForbidden)
	}

	users, err := fetchUsers(ctx, db, rows)
	if err != nil {
		return GroupWithMembers{}, err
	}
	return join(g, rows, users), nil
}

// hydrate performs the three batched fetches for a set of group IDs and
// joins them in memory.
func hydrate(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) ([]GroupWithMembers, error) {
	groupRows, err := groupstore.New(db).ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	memberRows, err := membershipstore.New(db).ListByGroups(ctx, ids)
	if err != nil {
		return nil, err
	}
	users, err := fetchUsers(ctx, db, memberRows)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[primitive.ObjectID][]models.GroupMembership, len(ids))
	for _, m := range memberRows {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}
	groupByID := make(map[primitive.ObjectID]models.Group, len(groupRows))
	for _, g := range groupRows {
		groupByID[g.ID] = g
	}

	out := make([]GroupWithMembers, 0, len(ids))
	for _, id := range ids {
		g, ok := groupByID[id]
		if !ok {
			continue // deleted between the ID collection and the bulk fetch
		}
		out = append(out, join(g, byGroup[id], users))
	}
	return out, nil
}

func fetchUsers(ctx context.Context, db *mongo.Database, rows []models.GroupMembership) (map[primitive.ObjectID]models.User, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(rows))
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		if _, dup := seen[m.UserID]; !dup {
			seen[m.UserID] = struct{}{}
			ids = append(ids, m.UserID)
		}
	}
	userRows, err := userstore.New(db).ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(userRows))
	for _, u := range userRows {
		byID[u.ID] = u
	}
	return byID, nil
}

func join(g models.Group, rows []models.GroupMembership, users map[primitive.ObjectID]models.User) GroupWithMembers {
	gw := GroupWithMembers{Group: g, Members: make([]Member, 0, len(rows))}
	for _, m := range rows {
		gw.Members = append(gw.Members, Member{
			MembershipID: m.ID,
			User:         users[m.UserID],
			Role:         m.Role,
			Status:       m.Status,
			Color:        m.Color,
		})
		if m.Status == models.StatusAccepted {
			gw.MemberCount++
		}
	}
	return gw
}
