package store

import (
	"context"

	"gorm.io/gorm"

	"tenantgate/internal/models"
)

// Audit lives on the system connection only.
type Audit struct {
	DB *gorm.DB
}

func (s Audit) Append(ctx context.Context, entry *models.AuditLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

// Page lists entries newest-first with cursor pagination; afterID of zero
// starts at the head. Returns one extra row so callers can tell whether a
// next page exists.
func (s Audit) Page(ctx context.Context, afterID uint64, limit int, search string) ([]models.AuditLog, error) {
	query := s.DB.WithContext(ctx).Model(&models.AuditLog{}).Order("id DESC")
	if afterID > 0 {
		query = query.Where("id < ?", afterID)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("(initiator_name LIKE ? OR action LIKE ? OR resource_type LIKE ? OR ip LIKE ?)",
			like, like, like, like)
	}

	var logs []models.AuditLog
	if err := query.Limit(limit + 1).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
