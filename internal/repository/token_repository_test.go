package repository_test

import (
	"context"
	"testing"

	"github.com/sliceworks/pizza-backend/internal/repository"
	"github.com/sliceworks/pizza-backend/internal/testutil"
)

func TestTokenLedgerLifecycle(t *testing.T) {
	db := testutil.OpenDB(t, "token_ledger")
	ledger := repository.NewTokenRepo(db)
	ctx := context.Background()

	ok, err := ledger.Exists(ctx, "sig-1")
	if err != nil {
		t.Fatalf("exists on empty ledger: %v", err)
	}
	if ok {
		t.Fatal("unknown signature reported present")
	}

	if err := ledger.Upsert(ctx, "sig-1", 7); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Re-issuing the same signature must replace, not fail.
	if err := ledger.Upsert(ctx, "sig-1", 7); err != nil {
		t.Fatalf("upsert twice: %v", err)
	}

	ok, err = ledger.Exists(ctx, "sig-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("stored signature reported absent")
	}

	if err := ledger.Delete(ctx, "sig-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = ledger.Exists(ctx, "sig-1")
	if err != nil {
		t.Fatalf("exists after delete: %v", err)
	}
	if ok {
		t.Fatal("deleted signature reported present")
	}

	// Deleting an absent row stays quiet.
	if err := ledger.Delete(ctx, "sig-1"); err != nil {
		t.Fatalf("delete absent row: %v", err)
	}
}
