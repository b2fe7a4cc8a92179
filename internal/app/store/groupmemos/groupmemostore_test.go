package groupmemostore_test

import (
	"testing"
	"time"

	groupmemostore "github.com/kdawg1232/memoserver/internal/app/store/groupmemos"
	"github.com/kdawg1232/memoserver/internal/app/system/indexes"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"github.com/kdawg1232/memoserver/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "author")
	g := fixtures.CreateGroup(ctx, "Links", author.ID)
	memo := fixtures.CreateMemo(ctx, author.ID, "pinned")

	gm, err := store.Insert(ctx, g.ID, memo.ID, author.ID)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if gm.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if gm.AddedBy != author.ID {
		t.Errorf("AddedBy: got %v, want %v", gm.AddedBy, author.ID)
	}
}

func TestStore_Insert_AlreadyShared(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	author := fixtures.CreateUser(ctx, "author")
	g := fixtures.CreateGroup(ctx, "Links", author.ID)
	memo := fixtures.CreateMemo(ctx, author.ID, "pinned")

	if _, err := store.Insert(ctx, g.ID, memo.ID, author.ID); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}

	_, err := store.Insert(ctx, g.ID, memo.ID, author.ID)
	if err != groupmemostore.ErrAlreadyShared {
		t.Errorf("expected ErrAlreadyShared, got %v", err)
	}
}

func TestStore_ListByGroup_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "author")
	g := fixtures.CreateGroup(ctx, "Ordered", author.ID)

	base := time.Now().UTC().Truncate(time.Millisecond)
	var memoIDs []primitive.ObjectID
	for i := 0; i < 3; i++ {
		memo := fixtures.CreateMemo(ctx, author.ID, "m")
		gm := models.GroupMemo{
			ID:        primitive.NewObjectID(),
			GroupID:   g.ID,
			MemoID:    memo.ID,
			AddedBy:   author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := db.Collection("group_memos").InsertOne(ctx, gm); err != nil {
			t.Fatalf("insert link: %v", err)
		}
		memoIDs = append(memoIDs, memo.ID)
	}

	links, err := store.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	// Last shared comes first.
	if links[0].MemoID != memoIDs[2] {
		t.Errorf("first link: got %v, want %v", links[0].MemoID, memoIDs[2])
	}
	if links[2].MemoID != memoIDs[0] {
		t.Errorf("last link: got %v, want %v", links[2].MemoID, memoIDs[0])
	}
}

func TestStore_ListByMemo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "author")
	g1 := fixtures.CreateGroup(ctx, "One", author.ID)
	g2 := fixtures.CreateGroup(ctx, "Two", author.ID)
	memo := fixtures.CreateMemo(ctx, author.ID, "everywhere")
	other := fixtures.CreateMemo(ctx, author.ID, "elsewhere")

	fixtures.ShareMemo(ctx, g1.ID, memo.ID, author.ID)
	fixtures.ShareMemo(ctx, g2.ID, memo.ID, author.ID)
	fixtures.ShareMemo(ctx, g1.ID, other.ID, author.ID)

	links, err := store.ListByMemo(ctx, memo.ID)
	if err != nil {
		t.Fatalf("ListByMemo failed: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("expected 2 links, got %d", len(links))
	}
}

func TestStore_DeleteByMemo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "author")
	g1 := fixtures.CreateGroup(ctx, "One", author.ID)
	g2 := fixtures.CreateGroup(ctx, "Two", author.ID)
	memo := fixtures.CreateMemo(ctx, author.ID, "gone soon")

	fixtures.ShareMemo(ctx, g1.ID, memo.ID, author.ID)
	fixtures.ShareMemo(ctx, g2.ID, memo.ID, author.ID)

	count, err := store.DeleteByMemo(ctx, memo.ID)
	if err != nil {
		t.Fatalf("DeleteByMemo failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 deleted, got %d", count)
	}
}

func TestStore_DeleteByGroup_LeavesMemos(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupmemostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "author")
	g := fixtures.CreateGroup(ctx, "Closing", author.ID)
	memo := fixtures.CreateMemo(ctx, author.ID, "survives")
	fixtures.ShareMemo(ctx, g.ID, memo.ID, author.ID)

	count, err := store.DeleteByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 deleted, got %d", count)
	}

	// The memo itself stays in its author's personal scope.
	n, err := db.Collection("memos").CountDocuments(ctx, bson.M{"_id": memo.ID})
	if err != nil {
		t.Fatalf("count memos: %v", err)
	}
	if n != 1 {
		t.Errorf("memo must survive group link removal, got %d", n)
	}
}
