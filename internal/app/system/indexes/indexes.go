// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent, and
errors are aggregated so every problem is visible in one failed boot
instead of one per restart.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensureMemos(ctx, db); err != nil {
		problems = append(problems, "memos: "+err.Error())
	}
	if err := ensureGroupMemos(ctx, db); err != nil {
		problems = append(problems, "group_memos: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameUnique(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet reconciles the desired indexes for one collection. An
// index with the same keys and uniqueness is reused whatever its name; a
// same-keys index with different options is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameUnique(desiredUnique, ex.Unique) {
				continue
			}
			// Options changed (e.g. upgrading to unique): drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Handles are unique case-insensitively via the folded column.
		{
			Keys:    bson.D{{Key: "handle_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_handleci"),
		},
		// OAuth sign-in looks users up by Google subject.
		{
			Keys:    bson.D{{Key: "google_sub", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_users_googlesub"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Group names are unique case-insensitively.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_groups_nameci"),
		},
		// "Groups I created" half of the directory union.
		{
			Keys:    bson.D{{Key: "creator_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_creator"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("group_memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Exactly one membership row per (user, group); re-invites after a
		// decline update the row rather than adding one.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_gm_user_group"),
		},
		// Member lists and accepted-member counts per group.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_gm_group_status"),
		},
		// A user's accepted groups and pending invitations.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_gm_user_status"),
		},
	})
}

func ensureMemos(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("memos")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Personal scope: an author's memos newest-first with a stable
		// tiebreak.
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_memos_author_created"),
		},
	})
}

func ensureGroupMemos(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("group_memos")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// A memo links into a group at most once; re-shares are idempotent.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "memo_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_gmemo_group_memo"),
		},
		// Group scope listing, newest-first.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_gmemo_group_created"),
		},
		// Delete cascade and playback authorization look up by memo.
		{
			Keys:    bson.D{{Key: "memo_id", Value: 1}},
			Options: options.Index().SetName("idx_gmemo_memo"),
		},
	})
}
