package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

// Hostnames is the tenant directory: it maps fqdns to tenant records on the
// system connection.
type Hostnames struct {
	DB *gorm.DB
}

// FindByFQDN does an exact-match lookup and preloads everything tenant
// resolution needs: the website and the owning customer with its direct
// permission grants.
func (s Hostnames) FindByFQDN(ctx context.Context, fqdn string) (*models.Hostname, error) {
	var hostname models.Hostname
	err := s.DB.WithContext(ctx).
		Preload("Website").
		Preload("Customer.Permissions").
		Where("fqdn = ?", fqdn).
		First(&hostname).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &hostname, nil
}

func (s Hostnames) List(ctx context.Context) ([]models.Hostname, error) {
	var hostnames []models.Hostname
	if err := s.DB.WithContext(ctx).Find(&hostnames).Error; err != nil {
		return nil, err
	}
	return hostnames, nil
}

func (s Hostnames) FindByID(ctx context.Context, id uint64) (*models.Hostname, error) {
	var hostname models.Hostname
	err := s.DB.WithContext(ctx).First(&hostname, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &hostname, nil
}

func (s Hostnames) FQDNTaken(ctx context.Context, fqdn string, excludeID uint64) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.Hostname{}).Where("fqdn = ?", fqdn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s Hostnames) Create(ctx context.Context, hostname *models.Hostname) error {
	return s.DB.WithContext(ctx).Create(hostname).Error
}

func (s Hostnames) Update(ctx context.Context, hostname *models.Hostname) error {
	return s.DB.WithContext(ctx).Save(hostname).Error
}
