package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given handle. Returns the created user
// with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, handle string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Test",
		LastName:   handle,
		Handle:     handle,
		HandleCI:   text.Fold(handle),
		AuthMethod: models.AuthMethodPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture user %q: %v", handle, err)
	}
	return u
}

// CreateGroup inserts a group and the creator's accepted owner membership,
// matching what the group store writes on creation.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, creatorID primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("fixture group %q: %v", name, err)
	}
	f.CreateMembership(ctx, g.ID, creatorID, models.RoleOwner, models.StatusAccepted, models.PaletteColor(0))
	return g
}

// CreateMembership inserts a membership row directly, bypassing the store's
// invite flow. Accepted rows get a RespondedAt timestamp.
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID, role, status, color string) models.GroupMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		Color:     color,
		CreatedAt: now,
	}
	if status != models.StatusPending {
		m.RespondedAt = &now
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture membership: %v", err)
	}
	return m
}

// CreateMemo inserts a memo authored by the given user.
func (f *Fixtures) CreateMemo(ctx context.Context, authorID primitive.ObjectID, title string) models.Memo {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Memo{
		ID:              primitive.NewObjectID(),
		AuthorID:        authorID,
		Latitude:        37.4275,
		Longitude:       -122.1697,
		AudioPath:       "memos/test/" + primitive.NewObjectID().Hex() + ".m4a",
		DurationSeconds: 12,
		SizeBytes:       48_000,
		Title:           title,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("memos").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture memo %q: %v", title, err)
	}
	return m
}

// ShareMemo links a memo into a group.
func (f *Fixtures) ShareMemo(ctx context.Context, groupID, memoID, addedBy primitive.ObjectID) models.GroupMemo {
	f.t.Helper()

	gm := models.GroupMemo{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		MemoID:    memoID,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memos").InsertOne(ctx, gm); err != nil {
		f.t.Fatalf("fixture group memo: %v", err)
	}
	return gm
}
