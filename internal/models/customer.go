package models

import "time"

// Customer is a system-store record owning at most one tenant hostname.
// Its direct permission grants cap what tenant users may see.
type Customer struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Hostname    *Hostname    `gorm:"foreignKey:CustomerID" json:"hostname,omitempty"`
	Permissions []Permission `gorm:"many2many:customer_permissions;" json:"-"`
	Roles       []Role       `gorm:"many2many:customer_roles;" json:"-"`
}
