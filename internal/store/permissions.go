package store

import (
	"context"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

type Permissions struct {
	DB *gorm.DB
}

func (s Permissions) ListByGuard(ctx context.Context, guard string) ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.DB.WithContext(ctx).Where("guard_name = ?", guard).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (s Permissions) FindByIDs(ctx context.Context, ids []uint64) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var perms []models.Permission
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (s Permissions) FindByNames(ctx context.Context, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var perms []models.Permission
	if err := s.DB.WithContext(ctx).Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (s Permissions) FirstOrCreate(ctx context.Context, name, guard string) (*models.Permission, error) {
	perm := models.Permission{Name: name, GuardName: guard}
	err := s.DB.WithContext(ctx).
		Where("name = ? AND guard_name = ?", name, guard).
		FirstOrCreate(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}
