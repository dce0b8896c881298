package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tenantgate/internal/db"
	"tenantgate/internal/models"
)

// tenantPermissions is seeded into every freshly built tenant database.
var tenantPermissions = []string{
	"view-users",
	"create-users",
	"edit-users",
	"delete-users",
	"view-permissions",
}

// Provisioner builds the isolated store for a customer: a website row, a
// physical database named after its UUID, the tenant schema, the tenant
// permission seed, and the hostname that routes to it.
type Provisioner struct {
	System *gorm.DB
	Conns  *db.TenantConnector
	Log    *zap.Logger
}

// Provision is idempotent per fqdn at the directory level; callers check
// fqdn uniqueness before invoking it. A failure before the hostname row is
// written leaves no entry in the directory, so the tenant stays unreachable.
func (p *Provisioner) Provision(ctx context.Context, customer *models.Customer, fqdn string) (*models.Hostname, error) {
	website := models.Website{UUID: uuid.NewString()}
	if err := p.System.WithContext(ctx).Create(&website).Error; err != nil {
		return nil, fmt.Errorf("create website: %w", err)
	}

	hostname, err := p.buildTenant(ctx, customer, &website, fqdn)
	if err != nil {
		// Website rows only mean something through a hostname; drop the
		// orphan so the directory stays consistent. The physical database,
		// if it got created, is unreachable without one.
		if delErr := p.System.WithContext(ctx).Delete(&website).Error; delErr != nil {
			p.Log.Error("orphan website cleanup failed",
				zap.String("website_uuid", website.UUID), zap.Error(delErr))
		}
		p.Conns.Evict(website.UUID)
		return nil, err
	}
	return hostname, nil
}

func (p *Provisioner) buildTenant(ctx context.Context, customer *models.Customer, website *models.Website, fqdn string) (*models.Hostname, error) {
	dbName := p.Conns.DatabaseName(website.UUID)
	if err := p.System.WithContext(ctx).Exec("CREATE DATABASE IF NOT EXISTS " + dbName).Error; err != nil {
		return nil, fmt.Errorf("create tenant database %s: %w", dbName, err)
	}

	tenantDB, err := p.Conns.Connect(website.UUID)
	if err != nil {
		return nil, err
	}
	if err := MigrateTenant(tenantDB); err != nil {
		return nil, fmt.Errorf("migrate tenant database %s: %w", dbName, err)
	}
	if err := SeedTenantPermissions(ctx, tenantDB); err != nil {
		return nil, fmt.Errorf("seed tenant permissions: %w", err)
	}

	hostname := models.Hostname{
		FQDN:       fqdn,
		WebsiteID:  &website.ID,
		CustomerID: &customer.ID,
	}
	if err := p.System.WithContext(ctx).Create(&hostname).Error; err != nil {
		return nil, fmt.Errorf("create hostname: %w", err)
	}

	p.Log.Info("tenant provisioned",
		zap.String("fqdn", fqdn),
		zap.Uint64("customer_id", customer.ID),
		zap.String("database", dbName))

	return &hostname, nil
}

// MigrateTenant creates the tenant-side schema.
func MigrateTenant(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
	)
}

// SeedTenantPermissions ensures the tenant permission catalog exists.
func SeedTenantPermissions(ctx context.Context, gdb *gorm.DB) error {
	for _, name := range tenantPermissions {
		perm := models.Permission{Name: name, GuardName: models.GuardTenant}
		err := gdb.WithContext(ctx).
			Where("name = ? AND guard_name = ?", name, models.GuardTenant).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
	}
	return nil
}
