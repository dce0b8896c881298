package models

import "time"

type Role struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_role_name_guard" json:"name"`
	GuardName string    `gorm:"size:32;not null;uniqueIndex:idx_role_name_guard" json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"-"`
}
