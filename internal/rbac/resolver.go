package rbac

import (
	"context"
	"errors"

	"tenantgate/internal/models"
	"tenantgate/internal/tenancy"
)

// ErrInvalidGuard is returned for guard names outside {system, tenant}.
var ErrInvalidGuard = errors.New("invalid guard")

// PermissionStore is the permission lookup on whichever connection a guard
// binds to.
type PermissionStore interface {
	ListByGuard(ctx context.Context, guard string) ([]models.Permission, error)
	FindByNames(ctx context.Context, names []string) ([]models.Permission, error)
}

// StoreAccessor yields the permission store for one guard on the current
// request.
type StoreAccessor func(ctx context.Context) (PermissionStore, error)

// Resolver computes effective permission sets per guard. System principals
// see everything granted to them; tenant principals are additionally capped
// by their customer's own grants (the double-gate).
type Resolver struct {
	stores map[string]StoreAccessor
}

func New(system, tenant StoreAccessor) *Resolver {
	return &Resolver{stores: map[string]StoreAccessor{
		models.GuardSystem: system,
		models.GuardTenant: tenant,
	}}
}

// Effective returns the permissions visible to the principal under the
// guard. Direct grants and role-derived grants are unioned, deduplicated by
// name, and filtered to the guard's domain. Under the tenant guard the
// union is then intersected with the owning customer's direct grants; with
// no tenant context the result is empty, never an error.
func (r *Resolver) Effective(ctx context.Context, guard string, user *models.User) []models.Permission {
	granted := grantedPermissions(user, guard)

	if guard != models.GuardTenant {
		return granted
	}

	allowed := customerPermissionNames(ctx)
	visible := make([]models.Permission, 0, len(granted))
	for _, perm := range granted {
		if _, ok := allowed[perm.Name]; ok {
			visible = append(visible, perm)
		}
	}
	return visible
}

// ListByGuard returns every permission record in the guard's domain,
// unfiltered by principal. Used for admin listings. The guard selects which
// catalog rows come back, not which store answers: the query runs against
// the request's current connection, so the system API lists tenant-guard
// records from the system store (they are mirrored there to be granted
// from).
func (r *Resolver) ListByGuard(ctx context.Context, guard string) ([]models.Permission, error) {
	if _, ok := r.stores[guard]; !ok {
		return nil, ErrInvalidGuard
	}
	st, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListByGuard(ctx, guard)
}

// current yields the permission store for the request's connection: the
// tenant store inside a tenant context, the system store otherwise.
func (r *Resolver) current(ctx context.Context) (PermissionStore, error) {
	if tenancy.FromContext(ctx) != nil {
		return r.stores[models.GuardTenant](ctx)
	}
	return r.stores[models.GuardSystem](ctx)
}

// TenantVisible returns the tenant-store permission records matching the
// current customer's direct grants: the catalog a tenant admin may assign
// from. Outside a tenant context, or for a customerless hostname, it is
// empty.
func (r *Resolver) TenantVisible(ctx context.Context) ([]models.Permission, error) {
	allowed := customerPermissionNames(ctx)
	if len(allowed) == 0 {
		return []models.Permission{}, nil
	}

	names := make([]string, 0, len(allowed))
	for name := range allowed {
		names = append(names, name)
	}

	st, err := r.stores[models.GuardTenant](ctx)
	if err != nil {
		return []models.Permission{}, nil
	}
	perms, err := st.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []models.Permission{}
	}
	return perms, nil
}

// grantedPermissions unions direct and role-derived grants within the
// guard's domain, deduplicated by name.
func grantedPermissions(user *models.User, guard string) []models.Permission {
	seen := make(map[string]struct{})
	granted := make([]models.Permission, 0, len(user.Permissions))

	add := func(perm models.Permission) {
		if perm.GuardName != guard {
			return
		}
		if _, ok := seen[perm.Name]; ok {
			return
		}
		seen[perm.Name] = struct{}{}
		granted = append(granted, perm)
	}

	for _, perm := range user.Permissions {
		add(perm)
	}
	for _, role := range user.Roles {
		if role.GuardName != guard {
			continue
		}
		for _, perm := range role.Permissions {
			add(perm)
		}
	}
	return granted
}

func customerPermissionNames(ctx context.Context) map[string]struct{} {
	tc := tenancy.FromContext(ctx)
	if tc == nil || tc.Customer == nil {
		return nil
	}
	names := make(map[string]struct{}, len(tc.Customer.Permissions))
	for _, perm := range tc.Customer.Permissions {
		names[perm.Name] = struct{}{}
	}
	return names
}
