// Package store holds the gorm-backed repositories. Each repository wraps a
// *gorm.DB handle; callers decide whether that handle points at the system
// database or at a tenant database resolved for the current request.
package store

import "errors"

// ErrNotFound is returned for lookups that match no record. Callers decide
// whether that means 404, "no tenant", or Unauthorized.
var ErrNotFound = errors.New("record not found")
