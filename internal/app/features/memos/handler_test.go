package memos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/kdawg1232/memoserver/internal/app/features/memos"
	"github.com/kdawg1232/memoserver/internal/app/store/queries/scopedview"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"github.com/kdawg1232/memoserver/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// multipartShare builds a share request body. audio may be empty to test
// the fail-fast path.
func multipartShare(t *testing.T, audio []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(audio); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func shareFields(duration string) map[string]string {
	return map[string]string{
		"latitude":         "38.95",
		"longitude":        "-92.33",
		"duration_seconds": duration,
	}
}

func TestHandleShareMemo_RequiresUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := memos.NewHandler(db, nil, zap.NewNop())

	body, ct := multipartShare(t, []byte("audio-bytes"), shareFields("5"))
	req := httptest.NewRequest("POST", "/memos", body)
	req.Header.Set("Content-Type", ct)
	rec := testutil.NewRecorder()
	h.HandleShareMemo(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleShareMemo_EmptyRecording(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := memos.NewHandler(db, nil, zap.NewNop())

	body, ct := multipartShare(t, nil, shareFields("5"))
	req := httptest.NewRequest("POST", "/memos", body)
	req.Header.Set("Content-Type", ct)
	req = testutil.WithUser(req, testutil.NewTestUser("alice"))
	rec := testutil.NewRecorder()
	h.HandleShareMemo(rec, req)

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestHandleShareMemo_RejectsBadDuration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := memos.NewHandler(db, nil, zap.NewNop())
	user := testutil.NewTestUser("alice")

	for _, duration := range []string{"0", "-3", "31", "nope", ""} {
		body, ct := multipartShare(t, []byte("audio-bytes"), shareFields(duration))
		req := httptest.NewRequest("POST", "/memos", body)
		req.Header.Set("Content-Type", ct)
		req = testutil.WithUser(req, user)
		rec := testutil.NewRecorder()
		h.HandleShareMemo(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("duration %q: status = %d, want 400", duration, rec.Code)
		}
	}
}

func TestHandleShareMemo_RejectsBadGroupID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := memos.NewHandler(db, nil, zap.NewNop())

	fields := shareFields("5")
	fields["group_ids"] = "not-a-hex-id"
	body, ct := multipartShare(t, []byte("audio-bytes"), fields)
	req := httptest.NewRequest("POST", "/memos", body)
	req.Header.Set("Content-Type", ct)
	req = testutil.WithUser(req, testutil.NewTestUser("alice"))
	rec := testutil.NewRecorder()
	h.HandleShareMemo(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleShareMemo_PartialFanOutFailureStillSucceeds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	blobs, err := storage.NewLocal(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/files/memos",
	})
	if err != nil {
		t.Fatalf("local storage init: %v", err)
	}
	h := memos.NewHandler(db, blobs, zap.NewNop())

	author := fx.CreateUser(ctx, "alice")
	g := fx.CreateGroup(ctx, "Walkers", author.ID)
	missing := primitive.NewObjectID()

	fields := shareFields("5")
	fields["title"] = "Corner store"
	fields["group_ids"] = g.ID.Hex() + "," + missing.Hex()
	body, ct := multipartShare(t, []byte("audio-bytes"), fields)
	req := httptest.NewRequest("POST", "/memos", body)
	req.Header.Set("Content-Type", ct)
	req = testutil.WithUser(req, testutil.TestUser{ID: author.ID.Hex(), Handle: "alice"})
	rec := testutil.NewRecorder()
	h.HandleShareMemo(rec, req)

	// One target failed, but the memo persisted: the caller gets a 201
	// with counts, never an error.
	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		Memo         models.Memo `json:"memo"`
		SharedTo     int         `json:"shared_to"`
		FailedShares int         `json:"failed_shares"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse share response: %v", err)
	}
	if resp.SharedTo != 1 {
		t.Errorf("shared_to = %d, want 1", resp.SharedTo)
	}
	if resp.FailedShares != 1 {
		t.Errorf("failed_shares = %d, want 1", resp.FailedShares)
	}

	// The memo row is present.
	n, err := db.Collection("memos").CountDocuments(ctx, bson.M{"_id": resp.Memo.ID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("memo rows = %d, want 1", n)
	}

	// The surviving target got its link; the missing group got nothing.
	links, err := h.GroupMemos.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].MemoID != resp.Memo.ID {
		t.Fatalf("group links = %v, want exactly the shared memo", links)
	}
}

func TestServePersonalMemos(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	h := memos.NewHandler(db, nil, zap.NewNop())

	author := fx.CreateUser(ctx, "alice")
	other := fx.CreateUser(ctx, "bob")
	fx.CreateMemo(ctx, author.ID, "First stop")
	fx.CreateMemo(ctx, author.ID, "Second stop")
	fx.CreateMemo(ctx, other.ID, "Not mine")

	req := testutil.NewRequest("GET", "/memos")
	req = testutil.WithUser(req, testutil.TestUser{ID: author.ID.Hex(), Handle: "alice"})
	rec := testutil.NewRecorder()
	h.ServePersonalMemos(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var entries []scopedview.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Memo.AuthorID != author.ID {
			t.Errorf("entry %s has author %s, want %s", e.Memo.ID.Hex(), e.Memo.AuthorID.Hex(), author.ID.Hex())
		}
		if e.Color != models.PersonalColor {
			t.Errorf("entry %s color = %q, want personal color", e.Memo.ID.Hex(), e.Color)
		}
	}
}

func TestServePersonalMemos_EmptyIsArray(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := memos.NewHandler(db, nil, zap.NewNop())

	req := testutil.NewRequest("GET", "/memos")
	req = testutil.WithUser(req, testutil.NewTestUser("nobody"))
	rec := testutil.NewRecorder()
	h.ServePersonalMemos(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("empty scope body = %q, want []", got)
	}
}

func TestHandleDeleteMemo_OnlyAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	h := memos.NewHandler(db, nil, zap.NewNop())

	author := fx.CreateUser(ctx, "alice")
	stranger := fx.CreateUser(ctx, "mallory")
	memo := fx.CreateMemo(ctx, author.ID, "Keep out")

	// A non-author is refused.
	req := testutil.NewRequest("DELETE", "/memos/"+memo.ID.Hex())
	req = testutil.WithUser(req, testutil.TestUser{ID: stranger.ID.Hex(), Handle: "mallory"})
	req = testutil.WithChiURLParam(req, "id", memo.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDeleteMemo(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The author may delete.
	req = testutil.NewRequest("DELETE", "/memos/"+memo.ID.Hex())
	req = testutil.WithUser(req, testutil.TestUser{ID: author.ID.Hex(), Handle: "alice"})
	req = testutil.WithChiURLParam(req, "id", memo.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDeleteMemo(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// Gone now.
	req = testutil.NewRequest("DELETE", "/memos/"+memo.ID.Hex())
	req = testutil.WithUser(req, testutil.TestUser{ID: author.ID.Hex(), Handle: "alice"})
	req = testutil.WithChiURLParam(req, "id", memo.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDeleteMemo(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleDeleteMemo_CascadesLinks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	h := memos.NewHandler(db, nil, zap.NewNop())

	author := fx.CreateUser(ctx, "alice")
	g := fx.CreateGroup(ctx, "Walkers", author.ID)
	memo := fx.CreateMemo(ctx, author.ID, "Shared stop")
	fx.ShareMemo(ctx, g.ID, memo.ID, author.ID)

	req := testutil.NewRequest("DELETE", "/memos/"+memo.ID.Hex())
	req = testutil.WithUser(req, testutil.TestUser{ID: author.ID.Hex(), Handle: "alice"})
	req = testutil.WithChiURLParam(req, "id", memo.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDeleteMemo(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	links, err := h.GroupMemos.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Fatalf("got %d links after delete, want 0", len(links))
	}

	// The group scope no longer shows the memo.
	entries, err := scopedview.ForGroup(ctx, db, g.ID, author.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("group scope has %d entries after delete, want 0", len(entries))
	}
}
