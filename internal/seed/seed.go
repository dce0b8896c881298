package seed

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tenantgate/internal/config"
	"tenantgate/internal/db"
	"tenantgate/internal/models"
	"tenantgate/internal/tenancy"
)

// systemPermissions is the system-guard catalog. The tenant-guard catalog
// is also mirrored into the system store so customers can be granted from
// it.
var systemPermissions = []string{
	"view-users",
	"create-users",
	"edit-users",
	"delete-users",
	"view-customers",
	"create-customers",
	"edit-customers",
	"view-hostnames",
	"edit-hostnames",
	"view-permissions",
	"view-audit",
}

// FirstSetup migrates the system schema, seeds the permission catalogs, and
// ensures the admin role and admin user exist. Safe to run on every boot.
func FirstSetup(ctx context.Context, gdb *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if err := gdb.AutoMigrate(
		&models.Website{},
		&models.Customer{},
		&models.Hostname{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	perms := make([]models.Permission, 0, len(systemPermissions))
	for _, name := range systemPermissions {
		perm := models.Permission{Name: name, GuardName: models.GuardSystem}
		err := gdb.WithContext(ctx).
			Where("name = ? AND guard_name = ?", name, models.GuardSystem).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
		perms = append(perms, perm)
	}

	// Tenant-guard catalog mirrored into the system store: the records
	// customers are granted from.
	if err := tenancy.SeedTenantPermissions(ctx, gdb); err != nil {
		return err
	}

	adminRole := models.Role{Name: "admin", GuardName: models.GuardSystem}
	err := gdb.WithContext(ctx).
		Where("name = ? AND guard_name = ?", adminRole.Name, models.GuardSystem).
		FirstOrCreate(&adminRole).Error
	if err != nil {
		return err
	}
	if err := gdb.WithContext(ctx).Model(&adminRole).Association("Permissions").Replace(perms); err != nil {
		return err
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "password"
		log.Warn("SEED_ADMIN_PASSWORD not set, using default password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         cfg.SeedAdminName,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
	}
	err = gdb.WithContext(ctx).
		Where("email = ?", admin.Email).
		FirstOrCreate(&admin).Error
	if err != nil {
		return err
	}
	if err := gdb.WithContext(ctx).Model(&admin).Association("Roles").Replace([]models.Role{adminRole}); err != nil {
		return err
	}

	log.Info("system seed complete",
		zap.String("admin_email", admin.Email),
		zap.Int("system_permissions", len(perms)))
	return nil
}

// BuildTenants re-migrates and re-seeds every provisioned tenant database.
// Run at boot so schema changes reach existing tenants.
func BuildTenants(ctx context.Context, gdb *gorm.DB, conns *db.TenantConnector, log *zap.Logger) error {
	var hostnames []models.Hostname
	err := gdb.WithContext(ctx).
		Preload("Website").
		Where("website_id IS NOT NULL").
		Find(&hostnames).Error
	if err != nil {
		return err
	}

	for _, hostname := range hostnames {
		if hostname.Website == nil {
			continue
		}
		tenantDB, err := conns.Connect(hostname.Website.UUID)
		if err != nil {
			log.Error("tenant build skipped",
				zap.String("fqdn", hostname.FQDN), zap.Error(err))
			continue
		}
		if err := tenancy.MigrateTenant(tenantDB); err != nil {
			return err
		}
		if err := tenancy.SeedTenantPermissions(ctx, tenantDB); err != nil {
			return err
		}
	}

	log.Info("tenant databases built", zap.Int("count", len(hostnames)))
	return nil
}
