package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	uid, handle, ok := authz.UserCtx(r)
	if ok {
		t.Error("expected ok=false without a user")
	}
	if uid != primitive.NilObjectID || handle != "" {
		t.Errorf("expected zero values, got %v %q", uid, handle)
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-an-objectid", Handle: "alice"})
	if _, _, ok := authz.UserCtx(r); ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_ValidUser(t *testing.T) {
	want := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: want.Hex(), Handle: "alice"})

	uid, handle, ok := authz.UserCtx(r)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if uid != want {
		t.Errorf("uid: got %v, want %v", uid, want)
	}
	if handle != "alice" {
		t.Errorf("handle: got %q, want alice", handle)
	}
}

func TestIsSelf(t *testing.T) {
	uid := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: uid.Hex(), Handle: "alice"})

	if !authz.IsSelf(r, uid) {
		t.Error("expected IsSelf=true for own ID")
	}
	if authz.IsSelf(r, primitive.NewObjectID()) {
		t.Error("expected IsSelf=false for another ID")
	}
}
