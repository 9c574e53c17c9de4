// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that
// are typically set by middleware but consumed by services. By keeping it free
// of net/http dependencies, services can import only what they need.
//
// The request-scoped time is load-bearing for correctness: every freshness,
// holding-period, and expiry comparison inside one authorization decision must
// be evaluated against a single consistent timestamp. Middleware captures
// "now" once per request; services read it via Now(ctx).
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, "officer-7", requestcontext.RoleComplianceOfficer)
package requestcontext

import (
	"context"
	"time"
)

// Role names a capability granted to the caller of a privileged operation.
type Role string

const (
	RoleOracleAdmin       Role = "oracle-admin"
	RoleComplianceOfficer Role = "compliance-officer"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	actorIDKey     struct{}
	rolesKey       struct{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Used by the requesttime
// middleware and by service tests that need a deterministic clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// ActorID retrieves the authenticated actor performing a privileged call.
func ActorID(ctx context.Context) string {
	if actor, ok := ctx.Value(actorIDKey{}).(string); ok {
		return actor
	}
	return ""
}

// Roles retrieves the caller's granted roles.
func Roles(ctx context.Context) []Role {
	if roles, ok := ctx.Value(rolesKey{}).([]Role); ok {
		return roles
	}
	return nil
}

// HasRole is the capability predicate checked at the start of each privileged
// operation.
func HasRole(ctx context.Context, role Role) bool {
	for _, r := range Roles(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

// WithActor injects an actor identity and its roles into the context.
func WithActor(ctx context.Context, actorID string, roles ...Role) context.Context {
	ctx = context.WithValue(ctx, actorIDKey{}, actorID)
	return context.WithValue(ctx, rolesKey{}, roles)
}
