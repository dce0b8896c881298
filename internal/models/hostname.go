package models

import "time"

// Hostname maps an inbound fqdn to a tenant. A row without a website is an
// unprovisioned or system-only entry and never resolves to a tenant.
type Hostname struct {
	ID                    uint64     `gorm:"primaryKey" json:"id"`
	FQDN                  string     `gorm:"uniqueIndex;size:255;not null" json:"fqdn"`
	RedirectTo            *string    `gorm:"size:255" json:"redirect_to"`
	ForceHTTPS            bool       `gorm:"default:false" json:"force_https"`
	UnderMaintenanceSince *time.Time `json:"under_maintenance_since"`
	WebsiteID             *uint64    `gorm:"index" json:"website_id"`
	CustomerID            *uint64    `gorm:"index" json:"customer_id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	Website  *Website  `gorm:"foreignKey:WebsiteID" json:"-"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
}
