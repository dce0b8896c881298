package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

type Users struct {
	DB *gorm.DB
}

func (s Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("Permissions").
		Preload("Roles.Permissions").
		Where("email = ?", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s Users) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("Permissions").
		Preload("Roles.Permissions").
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s Users) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// EmailTaken reports whether another user already claims the address.
func (s Users) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s Users) Create(ctx context.Context, user *models.User, perms []models.Permission) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if len(perms) > 0 {
			if err := tx.Model(user).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s Users) Update(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

// SyncPermissions replaces the user's direct grants with exactly the given
// set.
func (s Users) SyncPermissions(ctx context.Context, user *models.User, perms []models.Permission) error {
	return s.DB.WithContext(ctx).Model(user).Association("Permissions").Replace(perms)
}

func (s Users) Delete(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
