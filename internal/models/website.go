package models

import "time"

// Website identifies a tenant's isolated database. The UUID names the
// physical database the tenant connector opens.
type Website struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
