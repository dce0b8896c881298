package db

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// TenantConnector hands out gorm connections to per-tenant databases, one
// pool per website UUID. The pools are shared process-wide; which one a
// request uses is decided by the request's tenant context, never here.
type TenantConnector struct {
	dsnTemplate string
	prefix      string
	log         *zap.Logger

	mu    sync.Mutex
	conns map[string]*gorm.DB
}

func NewTenantConnector(dsnTemplate, prefix string, log *zap.Logger) *TenantConnector {
	return &TenantConnector{
		dsnTemplate: dsnTemplate,
		prefix:      prefix,
		log:         log,
		conns:       make(map[string]*gorm.DB),
	}
}

// DatabaseName derives the tenant database name from a website UUID.
func (c *TenantConnector) DatabaseName(websiteUUID string) string {
	return c.prefix + strings.ReplaceAll(websiteUUID, "-", "")
}

// Connect returns the connection for the given website, opening it on
// first use.
func (c *TenantConnector) Connect(websiteUUID string) (*gorm.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gdb, ok := c.conns[websiteUUID]; ok {
		return gdb, nil
	}

	dbName := c.DatabaseName(websiteUUID)
	dsn := fmt.Sprintf(c.dsnTemplate, dbName)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open tenant database %s: %w", dbName, err)
	}

	c.log.Info("tenant database connected", zap.String("database", dbName))
	c.conns[websiteUUID] = gdb
	return gdb, nil
}

// Evict drops a cached connection, closing its pool. Used when a tenant is
// reprovisioned.
func (c *TenantConnector) Evict(websiteUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gdb, ok := c.conns[websiteUUID]; ok {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		delete(c.conns, websiteUUID)
	}
}
