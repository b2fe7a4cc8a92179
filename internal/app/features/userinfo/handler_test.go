package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/features/userinfo"
	"github.com/kdawg1232/memoserver/internal/testutil"
)

func TestServeUserInfo_Anonymous(t *testing.T) {
	h := userinfo.NewHandler()
	req := httptest.NewRequest("GET", "/userinfo", nil)
	rec := httptest.NewRecorder()

	h.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		Handle          string `json:"handle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body.IsAuthenticated || body.Handle != "" {
		t.Errorf("anonymous response = %+v, want unauthenticated and empty", body)
	}
}

func TestServeUserInfo_SignedIn(t *testing.T) {
	h := userinfo.NewHandler()
	user := testutil.NewTestUser("karan_d")
	req := testutil.NewAuthenticatedRequest("GET", "/userinfo", user)
	rec := httptest.NewRecorder()

	h.ServeUserInfo(rec, req)

	var body struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		ID              string `json:"id"`
		Handle          string `json:"handle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !body.IsAuthenticated || body.ID != user.ID || body.Handle != "karan_d" {
		t.Errorf("signed-in response = %+v, want the session identity", body)
	}
}
