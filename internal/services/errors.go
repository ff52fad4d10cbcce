package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/validation"
)

// Kind classifies service errors for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// Error is the error type returned by services. It satisfies
// httpx.StatusCoder and httpx.Detailer.
type Error struct {
	Kind       Kind
	Message    string
	Violations validation.Violations
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (e *Error) PublicMessage() string { return e.Message }

func (e *Error) Details() any {
	if len(e.Violations) == 0 {
		return nil
	}
	return e.Violations
}

var (
	ErrInvalidCredentials = &Error{Kind: KindValidation, Message: "Invalid credentials"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Not authorized, invalid or expired token"}
	ErrNoToken            = &Error{Kind: KindUnauthenticated, Message: "Not authorized, no token provided"}
	ErrUserNotFound       = &Error{Kind: KindUnauthenticated, Message: "User not found"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Access denied: Insufficient role"}
	ErrNotOwner           = &Error{Kind: KindForbidden, Message: "Not authorized to modify this property"}
	ErrNotAdminSession    = &Error{Kind: KindForbidden, Message: "Admin session required"}
	ErrPropertyNotFound   = &Error{Kind: KindNotFound, Message: "Property not found"}
	ErrImageNotFound      = &Error{Kind: KindNotFound, Message: "Image not found on property"}
	ErrFavoriteNotFound   = &Error{Kind: KindNotFound, Message: "Favorite not found"}
	ErrUserExists         = &Error{Kind: KindConflict, Message: "User already exists"}
	ErrAlreadyExists      = &Error{Kind: KindConflict, Message: "Already in favorites"}
	ErrAlreadyApproved    = &Error{Kind: KindConflict, Message: "Property already approved"}
	ErrAlreadyRejected    = &Error{Kind: KindConflict, Message: "Property already rejected"}
	ErrNotApproved        = &Error{Kind: KindConflict, Message: "Property must be approved before activation"}
	ErrRejected           = &Error{Kind: KindConflict, Message: "Rejected properties cannot be activated"}
)

// Invalid builds a validation error carrying field violations.
func Invalid(v validation.Violations) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Violations: v}
}

// InvalidField is a shorthand for a single violation.
func InvalidField(field, code string) *Error {
	return Invalid(validation.Violations{field: code})
}

// Upstream wraps a store or dependency failure.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// transitionErr maps moderation errors from the model to service errors.
func transitionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrAlreadyApproved):
		return ErrAlreadyApproved
	case errors.Is(err, models.ErrAlreadyRejected):
		return ErrAlreadyRejected
	case errors.Is(err, models.ErrNotApproved):
		return ErrNotApproved
	case errors.Is(err, models.ErrRejected):
		return ErrRejected
	}
	return fmt.Errorf("moderation: %w", err)
}

// ResourceProperty is the gate resource type for listings.
const ResourceProperty = "property"

// Authorize checks g and translates a denial to ErrNotOwner.
func Authorize(ctx context.Context, g *gate.Gate[*models.User], user *models.User, action gate.Action, resourceType string, resource any) error {
	if user == nil {
		return ErrUnauthenticated
	}
	err := g.Authorize(ctx, user, action, resourceType, resource)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrNoPolicyDefined):
		return fmt.Errorf("authorize %s: %w", resourceType, err)
	default:
		return ErrNotOwner
	}
}
