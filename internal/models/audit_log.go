package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog lives in the system store only.
type AuditLog struct {
	ID            uint64         `gorm:"primaryKey" json:"id"`
	CustomerID    *uint64        `gorm:"index" json:"customer_id"` // nullable (system-guard actions)
	UserID        uint64         `gorm:"index" json:"user_id"`
	Action        string         `gorm:"size:200;not null" json:"action"` // e.g. "auth.login", "customers.provision"
	ResourceType  string         `gorm:"size:100" json:"resource_type"`
	ResourceID    uint64         `gorm:"index" json:"resource_id"`
	Metadata      datatypes.JSON `gorm:"type:json" json:"metadata"`
	IP            string         `gorm:"size:64" json:"ip"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255" json:"user_agent"`
	CreatedAt     time.Time      `json:"created_at"`
}
