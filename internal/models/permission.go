package models

import "time"

// Guard names partition permissions into authentication domains. A check
// against one guard never sees permissions of the other.
const (
	GuardSystem = "system"
	GuardTenant = "tenant"
)

type Permission struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_perm_name_guard" json:"name"`
	GuardName string    `gorm:"size:32;not null;uniqueIndex:idx_perm_name_guard" json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
