package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
	"github.com/sngm3741/store-rating-services/api/internal/rating/domain"
)

func TestOwnerDashboardWithoutStore(t *testing.T) {
	mem := newMemStore()
	svc := NewOwnerService(storeRepo{mem}, ratingRepo{mem})

	if _, err := svc.Dashboard(context.Background(), "owner-without-store"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOwnerDashboard(t *testing.T) {
	mem := newMemStore()
	owner := &domain.User{
		Name:  "Store Owner Test Account",
		Email: "owner@test.com",
		Role:  auth.RoleOwner,
	}
	if err := mem.Create(context.Background(), owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	storeID := seedStore(t, mem, "store@test.com", owner.ID)

	rater := &domain.User{Name: "Regular User Test Account", Email: "user@test.com", Role: auth.RoleUser}
	if err := mem.Create(context.Background(), rater); err != nil {
		t.Fatalf("seed rater: %v", err)
	}

	ratings := ratingRepo{mem}
	if _, err := ratings.Upsert(context.Background(), rater.ID, storeID, 4); err != nil {
		t.Fatalf("seed rating: %v", err)
	}

	svc := NewOwnerService(storeRepo{mem}, ratings)
	dashboard, err := svc.Dashboard(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if dashboard.Store.ID != storeID {
		t.Fatalf("store id = %s, want %s", dashboard.Store.ID, storeID)
	}
	if dashboard.Aggregate.Count != 1 || dashboard.Aggregate.Average != 4 {
		t.Fatalf("aggregate = %+v, want {Average:4 Count:1}", dashboard.Aggregate)
	}
	if len(dashboard.Raters) != 1 || dashboard.Raters[0].User.Email != "user@test.com" {
		t.Fatalf("unexpected raters: %+v", dashboard.Raters)
	}
}
