package accountstore_test

import (
	"errors"
	"testing"

	accountstore "github.com/dalemusser/mahallehub/internal/app/store/accounts"
	"github.com/dalemusser/mahallehub/internal/testutil"
)

func TestStore_SetPasswordAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accountstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.SetPassword(ctx, testutil.MemberID, "Ali Veli", "correct-horse")
	if err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if !created {
		t.Error("expected account to be created")
	}

	a, err := store.Authenticate(ctx, testutil.MemberID, "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if a.DisplayName != "Ali Veli" {
		t.Errorf("DisplayName: got %q", a.DisplayName)
	}
	if a.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}

	if _, err := store.Authenticate(ctx, testutil.MemberID, "wrong-password"); !errors.Is(err, accountstore.ErrWrongPassword) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := store.Authenticate(ctx, testutil.AssigneeID, "whatever1"); !errors.Is(err, accountstore.ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}

	created, err = store.SetPassword(ctx, testutil.MemberID, "", "another-secret")
	if err != nil || created {
		t.Fatalf("reset: created=%v err=%v", created, err)
	}
	a, err = store.Authenticate(ctx, testutil.MemberID, "another-secret")
	if err != nil {
		t.Fatalf("Authenticate after reset failed: %v", err)
	}
	if a.DisplayName != "Ali Veli" {
		t.Errorf("empty display name should keep the old one, got %q", a.DisplayName)
	}
}

func TestStore_WeakPasswordAndDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accountstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.SetPassword(ctx, testutil.MemberID, "x", "short"); !errors.Is(err, accountstore.ErrPasswordTooWeak) {
		t.Errorf("weak password: got %v", err)
	}

	fixtures.CreateAccount(ctx, testutil.AssigneeID, "Zeynep", "secret-pass")
	if err := store.SetDisabled(ctx, testutil.AssigneeID, true); err != nil {
		t.Fatalf("SetDisabled failed: %v", err)
	}
	if _, err := store.Authenticate(ctx, testutil.AssigneeID, "secret-pass"); !errors.Is(err, accountstore.ErrDisabled) {
		t.Errorf("disabled: got %v", err)
	}
	if err := store.SetDisabled(ctx, testutil.MemberID, true); !errors.Is(err, accountstore.ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
}
