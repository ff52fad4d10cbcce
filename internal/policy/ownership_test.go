package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
)

// mockNonOwnable is a test resource that does NOT implement Ownable.
type mockNonOwnable struct {
	ID uint
}

var (
	owner    = &models.User{ID: 42, Role: models.RoleLandlord}
	stranger = &models.User{ID: 99, Role: models.RoleLandlord}
	admin    = &models.User{ID: 1, Role: models.RoleAdmin}
)

func TestOwnershipPolicy_NilResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()

	if !p.Can(ctx, owner, gate.ActionList, nil) {
		t.Error("Expected Can to return true for nil resource")
	}
	if !p.Can(ctx, owner, gate.ActionCreate, nil) {
		t.Error("Expected Can to return true for nil resource on create")
	}
	if p.Can(ctx, nil, gate.ActionList, nil) {
		t.Error("Expected nil user to be denied")
	}
}

func TestOwnershipPolicy_OwnerCanAccess(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	resource := &models.Property{LandlordID: 42}

	for _, action := range []gate.Action{gate.ActionView, gate.ActionUpdate, gate.ActionDelete} {
		if !p.Can(ctx, owner, action, resource) {
			t.Errorf("Expected owner to have %s access", action)
		}
		if p.Can(ctx, stranger, action, resource) {
			t.Errorf("Expected non-owner to be denied %s", action)
		}
	}
}

func TestOwnershipPolicy_NonOwnableResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if p.Can(context.Background(), owner, gate.ActionView, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}

func TestAdminBypassPolicy_LimitedActions(t *testing.T) {
	p := policy.NewAdminBypassPolicy(policy.NewOwnershipPolicy(), gate.ActionDelete, gate.ActionModerate)
	ctx := context.Background()
	resource := &models.Property{LandlordID: 42}

	tests := []struct {
		name   string
		user   *models.User
		action gate.Action
		want   bool
	}{
		{"admin delete", admin, gate.ActionDelete, true},
		{"admin moderate", admin, gate.ActionModerate, true},
		{"admin update", admin, gate.ActionUpdate, false},
		{"owner update", owner, gate.ActionUpdate, true},
		{"stranger delete", stranger, gate.ActionDelete, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Can(ctx, tt.user, tt.action, resource); got != tt.want {
				t.Errorf("Can() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPropertyGate(t *testing.T) {
	g := policy.NewPropertyGate()
	ctx := context.Background()
	resource := &models.Property{LandlordID: 42}

	if !g.Can(ctx, admin, gate.ActionDelete, policy.ResourceProperty, resource) {
		t.Error("admin should delete any listing")
	}
	if g.Can(ctx, stranger, gate.ActionUpdate, policy.ResourceProperty, resource) {
		t.Error("stranger must not update")
	}
	if err := g.Authorize(ctx, owner, gate.ActionUpdate, "unknown", resource); !errors.Is(err, gate.ErrNoPolicyDefined) {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}
