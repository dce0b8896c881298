package tenancy

import (
	"context"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

// Context is the request-scoped tenant connection context. It is carried on
// the request's context.Context and never stored in a package variable, so
// concurrent requests for different hostnames cannot observe each other's
// tenant.
type Context struct {
	Hostname *models.Hostname
	Customer *models.Customer // may be nil for customerless hostnames
	DB       *gorm.DB         // the tenant connection
}

type ctxKey struct{}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext returns the active tenant context, or nil when the request
// resolved to no tenant. Absence means the system store is the default.
func FromContext(ctx context.Context) *Context {
	tc, _ := ctx.Value(ctxKey{}).(*Context)
	return tc
}
