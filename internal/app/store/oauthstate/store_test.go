package oauthstate_test

import (
	"testing"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/store/oauthstate"
	"github.com/kdawg1232/memoserver/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := store.Save(ctx, "state-abc", "/groups", expiresAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, "state-abc")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("expected state to be valid")
	}
	if returnURL != "/groups" {
		t.Errorf("returnURL: got %q, want %q", returnURL, "/groups")
	}

	// One-time use: a second validation fails.
	_, valid, err = store.Validate(ctx, "state-abc")
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if valid {
		t.Error("expected state to be consumed after first use")
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expiresAt := time.Now().UTC().Add(-1 * time.Minute)
	if err := store.Save(ctx, "state-old", "", expiresAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, valid, err := store.Validate(ctx, "state-old")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected expired state to be invalid")
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected unknown state to be invalid")
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	if err := store.Save(ctx, "fresh", "", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "stale-1", "", now.Add(-1*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "stale-2", "", now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	// The fresh token still validates.
	_, valid, err := store.Validate(ctx, "fresh")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("fresh state must survive cleanup")
	}
}
