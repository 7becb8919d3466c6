package app_test

import (
	"context"
	"testing"

	"github.com/dl5214/reviews-management-system/internal/app"
	"github.com/dl5214/reviews-management-system/internal/domain"
	memstore "github.com/dl5214/reviews-management-system/internal/storage/memory"
)

func TestUpdateOne_SetsAndReturnsStatus(t *testing.T) {
	store := memstore.New()
	m := app.NewModerationService(store)
	ctx := context.Background()

	st, err := m.UpdateOne(ctx, 42, domain.Approved)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st != domain.Approved {
		t.Fatalf("want approved, got %v", st)
	}
	got, _ := store.GetStatus(ctx, 42)
	if got != domain.Approved {
		t.Fatalf("store: want approved, got %v", got)
	}

	// idempotent re-apply
	if _, err := m.UpdateOne(ctx, 42, domain.Approved); err != nil {
		t.Fatalf("repeat err: %v", err)
	}
}

func TestUpdateOne_RejectsBadStatus(t *testing.T) {
	m := app.NewModerationService(memstore.New())
	_, err := m.UpdateOne(context.Background(), 1, "maybe")
	if err == nil || !domain.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestUpdateMany_AppliesToEachID(t *testing.T) {
	store := memstore.New()
	m := app.NewModerationService(store)
	ctx := context.Background()

	if err := m.UpdateMany(ctx, []int64{1, 2, 3}, domain.Approved); err != nil {
		t.Fatalf("err: %v", err)
	}
	ids, _ := store.ApprovedIDs(ctx)
	if len(ids) != 3 {
		t.Fatalf("want 3 approved, got %v", ids)
	}

	// re-moderating one id leaves the others untouched
	if err := m.UpdateMany(ctx, []int64{1}, domain.Rejected); err != nil {
		t.Fatalf("err: %v", err)
	}
	ids, _ = store.ApprovedIDs(ctx)
	if len(ids) != 2 {
		t.Fatalf("want 2 approved after rejecting one, got %v", ids)
	}
	st, _ := store.GetStatus(ctx, 1)
	if st != domain.Rejected {
		t.Fatalf("id 1: want rejected, got %v", st)
	}
}

func TestUpdateMany_RejectsBadStatus(t *testing.T) {
	store := memstore.New()
	m := app.NewModerationService(store)
	ctx := context.Background()

	if err := m.UpdateMany(ctx, []int64{7}, "nope"); !domain.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	// invalid unit must not corrupt existing state
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("store must stay empty, got %d records", n)
	}
}
