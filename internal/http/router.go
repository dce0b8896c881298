package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tenantgate/internal/auth"
	"tenantgate/internal/config"
	"tenantgate/internal/db"
	"tenantgate/internal/http/handlers"
	"tenantgate/internal/metrics"
	"tenantgate/internal/rbac"
	"tenantgate/internal/store"
	"tenantgate/internal/tenancy"
)

// NewRouter wires the stores, guards, and routes. The system guard binds to
// the system database; the tenant guard binds to whatever connection the
// request's tenant context carries.
func NewRouter(systemDB *gorm.DB, conns *db.TenantConnector, cfg config.Config, revoker auth.Revoker, log *zap.Logger) *gin.Engine {
	sysUsers := store.Users{DB: systemDB}
	sysPerms := store.Permissions{DB: systemDB}
	customers := store.Customers{DB: systemDB}
	hostnames := store.Hostnames{DB: systemDB}
	audit := store.Audit{DB: systemDB}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	authenticator := auth.New(tokens, revoker,
		func(ctx context.Context) (auth.UserStore, error) {
			return sysUsers, nil
		},
		func(ctx context.Context) (auth.UserStore, error) {
			tc := tenancy.FromContext(ctx)
			if tc == nil {
				return nil, auth.ErrNoTenant
			}
			return store.Users{DB: tc.DB}, nil
		},
	)

	permissions := rbac.New(
		func(ctx context.Context) (rbac.PermissionStore, error) {
			return sysPerms, nil
		},
		func(ctx context.Context) (rbac.PermissionStore, error) {
			tc := tenancy.FromContext(ctx)
			if tc == nil {
				return nil, auth.ErrNoTenant
			}
			return store.Permissions{DB: tc.DB}, nil
		},
	)

	resolver := &tenancy.Resolver{Dir: hostnames, Conns: conns, Log: log}
	provisioner := &tenancy.Provisioner{System: systemDB, Conns: conns, Log: log}

	systemRepos := func(ctx context.Context) (handlers.UserRepos, error) {
		return handlers.UserRepos{Users: sysUsers, Perms: sysPerms}, nil
	}
	tenantRepos := func(ctx context.Context) (handlers.UserRepos, error) {
		tc := tenancy.FromContext(ctx)
		if tc == nil {
			return handlers.UserRepos{}, auth.ErrNoTenant
		}
		return handlers.UserRepos{
			Users: store.Users{DB: tc.DB},
			Perms: store.Permissions{DB: tc.DB},
		}, nil
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	// Registered before the tenancy middleware so scrapes skip the
	// hostname lookup.
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.Use(tenancy.Middleware(resolver))

	systemAuth := auth.Middleware(authenticator, auth.GuardSystem)
	tenantAuth := auth.Middleware(authenticator, auth.GuardTenant)

	api := r.Group("/api")
	{
		api.GET("/checkTenant", handlers.CheckTenant())

		api.POST("/login", handlers.Login(authenticator, auth.GuardSystem, audit))
		api.POST("/user", systemAuth, handlers.Me(permissions, auth.GuardSystem))
		api.POST("/logout", systemAuth, handlers.Logout(authenticator, auth.GuardSystem, audit))
		api.POST("/refresh", systemAuth, handlers.Refresh(authenticator, auth.GuardSystem))

		api.GET("/permissions", systemAuth, handlers.ListPermissions(permissions))

		api.GET("/users", systemAuth, handlers.ListUsers(systemRepos))
		api.POST("/users", systemAuth, handlers.CreateUser(systemRepos))
		api.GET("/users/:id", systemAuth, handlers.ShowUser(systemRepos))
		api.PUT("/users/:id", systemAuth, handlers.UpdateUser(systemRepos))
		api.DELETE("/users/:id", systemAuth, handlers.DeleteUser(systemRepos))

		api.GET("/customers", systemAuth, handlers.ListCustomers(customers))
		api.POST("/customers", systemAuth, handlers.CreateCustomer(customers, sysPerms, provisioner, hostnames, audit))
		api.GET("/customers/:id", systemAuth, handlers.ShowCustomer(customers))
		api.PUT("/customers/:id", systemAuth, handlers.UpdateCustomer(customers, sysPerms))

		api.GET("/hostnames", systemAuth, handlers.ListHostnames(hostnames))
		api.POST("/hostnames", systemAuth, handlers.CreateHostname(hostnames))
		api.PUT("/hostnames/:id", systemAuth, handlers.UpdateHostname(hostnames))

		api.GET("/audit", systemAuth, handlers.ListAudit(audit))
	}

	tenant := api.Group("/tenant", tenancy.Required())
	{
		tenant.POST("/login", handlers.Login(authenticator, auth.GuardTenant, audit))
		tenant.POST("/user", tenantAuth, handlers.Me(permissions, auth.GuardTenant))
		tenant.POST("/logout", tenantAuth, handlers.Logout(authenticator, auth.GuardTenant, audit))
		tenant.POST("/refresh", tenantAuth, handlers.Refresh(authenticator, auth.GuardTenant))

		tenant.GET("/permissions", tenantAuth, handlers.TenantPermissions(permissions))

		tenant.GET("/users", tenantAuth, handlers.ListUsers(tenantRepos))
		tenant.POST("/users", tenantAuth, handlers.CreateUser(tenantRepos))
		tenant.GET("/users/:id", tenantAuth, handlers.ShowUser(tenantRepos))
		tenant.PUT("/users/:id", tenantAuth, handlers.UpdateUser(tenantRepos))
		tenant.DELETE("/users/:id", tenantAuth, handlers.DeleteUser(tenantRepos))
	}

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("host", c.Request.Host),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
