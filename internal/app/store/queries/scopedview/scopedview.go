// Package scopedview composes the memo list for one viewing scope: either a
// user's personal scope (their own memos) or a group scope (memos shared into
// that group). Every entry carries the display color the scope assigns to its
// author, so callers never reach back into membership rows to render a pin.
package scopedview

import (
	"context"
	"fmt"

	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	groupmemostore "github.com/kdawg1232/memoserver/internal/app/store/groupmemos"
	groupstore "github.com/kdawg1232/memoserver/internal/app/store/groups"
	membershipstore "github.com/kdawg1232/memoserver/internal/app/store/memberships"
	memostore "github.com/kdawg1232/memoserver/internal/app/store/memos"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is one memo in a scoped view, paired with the color the scope
// renders it in.
type Entry struct {
	Memo  models.Memo `json:"memo"`
	Color string      `json:"color"`
}

// ForPersonal returns the user's own memos, newest first, all in the fixed
// personal color. The personal scope never shows anyone else's memos, no
// matter what groups the user belongs to.
func ForPersonal(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]Entry, error) {
	memoRows, err := memostore.New(db).ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(memoRows))
	for _, m := range memoRows {
		out = append(out, Entry{Memo: m, Color: models.PersonalColor})
	}
	return out, nil
}

// ForGroup returns the memos shared into a group, newest share first, each
// colored by the AUTHOR's membership row in that group. The requesting user
// must be an accepted member or the creator.
//
// Share links whose memo was deleted are dropped silently; authors with no
// membership row (they left after sharing) fall back to the default member
// color rather than losing their memos from the view.
func ForGroup(ctx context.Context, db *mongo.Database, groupID, requestingUser primitive.ObjectID) ([]Entry, error) {
	g, err := groupstore.New(db).GetByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, faults.ErrNotFound
		}
		return nil, err
	}
	memberRows, err := membershipstore.New(db).ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if d := grouppolicy.CanView(g, memberRows, requestingUser); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, faults.ErrForbidden)
	}

	links, err := groupmemostore.New(db).ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}

	memoIDs := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		memoIDs = append(memoIDs, l.MemoID)
	}
	memoRows, err := memostore.New(db).ListByIDs(ctx, memoIDs)
	if err != nil {
		return nil, err
	}

	return compose(links, memoRows, memberRows), nil
}

// compose joins share links to memos and author colors in memory. Link order
// is preserved; dangling links are skipped.
func compose(links []models.GroupMemo, memoRows []models.Memo, memberRows []models.GroupMembership) []Entry {
	memoByID := make(map[primitive.ObjectID]models.Memo, len(memoRows))
	for _, m := range memoRows {
		memoByID[m.ID] = m
	}
	colorByAuthor := make(map[primitive.ObjectID]string, len(memberRows))
	for _, m := range memberRows {
		colorByAuthor[m.UserID] = m.Color
	}

	out := make([]Entry, 0, len(links))
	for _, l := range links {
		memo, ok := memoByID[l.MemoID]
		if !ok {
			continue
		}
		color := colorByAuthor[memo.AuthorID]
		if color == "" {
			color = models.DefaultMemberColor
		}
		out = append(out, Entry{Memo: memo, Color: color})
	}
	return out
}
