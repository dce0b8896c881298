package handlers

import (
	"context"

	"tenantgate/internal/models"
)

// Repository interfaces consumed by the handlers. The gorm repositories in
// internal/store satisfy them; tests substitute in-memory fakes. Accessor
// funcs pick the store for the request: the system accessors return fixed
// repositories, the tenant accessors build them over the request's tenant
// connection and fail when no tenant resolved.

type UserRepo interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)
	Create(ctx context.Context, user *models.User, perms []models.Permission) error
	Update(ctx context.Context, user *models.User) error
	SyncPermissions(ctx context.Context, user *models.User, perms []models.Permission) error
	Delete(ctx context.Context, user *models.User) error
}

type PermissionRepo interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]models.Permission, error)
}

// UserRepos binds the user and permission repositories of one guard for one
// request.
type UserRepos struct {
	Users UserRepo
	Perms PermissionRepo
}

type UserRepoAccessor func(ctx context.Context) (UserRepos, error)

type CustomerRepo interface {
	List(ctx context.Context) ([]models.Customer, error)
	FindByID(ctx context.Context, id uint64) (*models.Customer, error)
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	SyncPermissions(ctx context.Context, customer *models.Customer, perms []models.Permission) error
	// Delete is rollback-only: no route removes customers.
	Delete(ctx context.Context, customer *models.Customer) error
}

type HostnameRepo interface {
	List(ctx context.Context) ([]models.Hostname, error)
	FindByID(ctx context.Context, id uint64) (*models.Hostname, error)
	FQDNTaken(ctx context.Context, fqdn string, excludeID uint64) (bool, error)
	Create(ctx context.Context, hostname *models.Hostname) error
	Update(ctx context.Context, hostname *models.Hostname) error
}

type AuditRepo interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	Page(ctx context.Context, afterID uint64, limit int, search string) ([]models.AuditLog, error)
}

// TenantProvisioner builds a customer's isolated store and directory entry.
type TenantProvisioner interface {
	Provision(ctx context.Context, customer *models.Customer, fqdn string) (*models.Hostname, error)
}
