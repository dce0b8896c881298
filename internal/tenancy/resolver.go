package tenancy

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tenantgate/internal/models"
	"tenantgate/internal/store"
)

// Directory looks hostnames up in the system store.
type Directory interface {
	FindByFQDN(ctx context.Context, fqdn string) (*models.Hostname, error)
}

// Connector opens the database belonging to a website UUID.
type Connector interface {
	Connect(websiteUUID string) (*gorm.DB, error)
}

// Resolver turns an inbound Host header into a tenant context. A hostname
// that is unknown, has no website, or whose database cannot be reached all
// resolve to "no tenant"; resolution never raises past this boundary.
type Resolver struct {
	Dir   Directory
	Conns Connector
	Log   *zap.Logger
}

// Resolve returns (nil, nil) when no tenant matches the host.
func (r *Resolver) Resolve(ctx context.Context, host string) (*Context, error) {
	fqdn := stripPort(host)
	if fqdn == "" {
		return nil, nil
	}

	hostname, err := r.Dir.FindByFQDN(ctx, fqdn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if hostname.Website == nil {
		// Unprovisioned or system-only entry.
		return nil, nil
	}

	gdb, err := r.Conns.Connect(hostname.Website.UUID)
	if err != nil {
		// Fail closed: an unreachable tenant database must not leak into a
		// different connection.
		r.Log.Error("tenant connection failed",
			zap.String("fqdn", fqdn),
			zap.String("website_uuid", hostname.Website.UUID),
			zap.Error(err))
		return nil, nil
	}

	return &Context{
		Hostname: hostname,
		Customer: hostname.Customer,
		DB:       gdb,
	}, nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.ToLower(h)
	}
	return strings.ToLower(strings.TrimSpace(host))
}
