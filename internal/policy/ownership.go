package policy

import (
	"context"

	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/services"
)

// ResourceProperty is the gate resource type for listings.
const ResourceProperty = services.ResourceProperty

// Ownable is an interface for resources that have an owner.
type Ownable interface {
	GetOwnerID() uint
}

// OwnershipPolicy allows a user to act on resources they own.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource.
// For list/create actions (resource is nil) it returns true; role gates
// already control access to those.
func (p *OwnershipPolicy) Can(_ context.Context, user *models.User, _ gate.Action, resource any) bool {
	if user == nil {
		return false
	}
	if resource == nil {
		return true
	}
	// Resources without an owner are denied so a missing check never grants access.
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetOwnerID() == user.ID
}

// AdminBypassPolicy wraps another policy and lets admins through for a
// fixed set of actions only.
type AdminBypassPolicy struct {
	inner   gate.Policy[*models.User]
	actions []gate.Action
}

// NewAdminBypassPolicy creates a policy that bypasses inner for admins
// performing one of actions.
func NewAdminBypassPolicy(inner gate.Policy[*models.User], actions ...gate.Action) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, actions: actions}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, user *models.User, action gate.Action, resource any) bool {
	if user.IsAdmin() && action.In(p.actions...) {
		return true
	}
	return p.inner.Can(ctx, user, action, resource)
}

// NewPropertyGate returns the gate used by routes and services: owners may
// do anything to their listings, admins may delete and moderate any listing.
func NewPropertyGate() *gate.Gate[*models.User] {
	g := gate.NewGate[*models.User]()
	g.Register(ResourceProperty, NewAdminBypassPolicy(NewOwnershipPolicy(), gate.ActionDelete, gate.ActionModerate))
	return g
}
