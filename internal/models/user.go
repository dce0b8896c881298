package models

import "time"

// User lives in both the system store and each tenant store. The same
// schema is migrated into every database; the active connection decides
// which population a query sees.
type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Permissions []Permission `gorm:"many2many:user_permissions;" json:"-"`
	Roles       []Role       `gorm:"many2many:user_roles;" json:"-"`
}
