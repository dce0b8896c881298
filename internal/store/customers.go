package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

// Customers lives on the system connection only.
type Customers struct {
	DB *gorm.DB
}

func (s Customers) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.DB.WithContext(ctx).Preload("Hostname").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s Customers) FindByID(ctx context.Context, id uint64) (*models.Customer, error) {
	var customer models.Customer
	err := s.DB.WithContext(ctx).
		Preload("Hostname").
		Preload("Permissions").
		Preload("Roles.Permissions").
		First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s Customers) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s Customers) Create(ctx context.Context, customer *models.Customer) error {
	return s.DB.WithContext(ctx).Create(customer).Error
}

func (s Customers) Update(ctx context.Context, customer *models.Customer) error {
	return s.DB.WithContext(ctx).Save(customer).Error
}

// SyncPermissions replaces the customer's direct grants; these cap what the
// customer's tenant users can see.
func (s Customers) SyncPermissions(ctx context.Context, customer *models.Customer, perms []models.Permission) error {
	return s.DB.WithContext(ctx).Model(customer).Association("Permissions").Replace(perms)
}

// Delete removes the customer and its grant associations. No handler exposes
// this; it exists to undo a partially created customer when provisioning
// fails.
func (s Customers) Delete(ctx context.Context, customer *models.Customer) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(customer).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(customer).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(customer).Error
	})
}
