package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kdawg1232/memoserver/internal/app/features/events"
	"github.com/kdawg1232/memoserver/internal/app/system/streamtoken"
	"github.com/kdawg1232/memoserver/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *events.Handler {
	t.Helper()
	tokens, err := streamtoken.New([]byte("0123456789abcdef0123456789abcdef"), streamtoken.DefaultTTL)
	if err != nil {
		t.Fatal(err)
	}
	return events.NewHandler(nil, tokens, zap.NewNop())
}

func TestServeToken_RequiresUser(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewRequest("GET", "/events/token")
	rec := testutil.NewRecorder()
	h.ServeToken(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeToken_IssuesVerifiableToken(t *testing.T) {
	h := newTestHandler(t)
	user := testutil.NewTestUser("alice")

	req := testutil.NewAuthenticatedRequest("GET", "/events/token", user)
	rec := testutil.NewRecorder()
	h.ServeToken(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	uid, err := h.Tokens.Verify(body["token"])
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if uid != user.ID {
		t.Errorf("token user = %q, want %q", uid, user.ID)
	}
}

func TestServeStream_RejectsBadToken(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/events?token=garbage", nil)
	rec := testutil.NewRecorder()
	h.ServeStream(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeStream_RejectsMissingToken(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/events", nil)
	rec := testutil.NewRecorder()
	h.ServeStream(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}
