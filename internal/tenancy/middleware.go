package tenancy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenantgate/internal/metrics"
)

// Middleware resolves the request's Host header and, on a match, attaches
// the tenant context to the request. It never rejects: routes that demand a
// tenant add Required on top.
func Middleware(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := r.Resolve(c.Request.Context(), c.Request.Host)
		if err != nil {
			r.Log.Error("tenant resolution failed", zap.String("host", c.Request.Host), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tenant resolution failed"})
			return
		}

		if tc == nil {
			metrics.TenantResolutions.WithLabelValues("miss").Inc()
			c.Next()
			return
		}

		metrics.TenantResolutions.WithLabelValues("hit").Inc()
		c.Request = c.Request.WithContext(WithTenant(c.Request.Context(), tc))
		c.Next()
	}
}

// Required gates tenant-only routes. No resolved tenant is a normal
// outcome, answered with 501 rather than an error.
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromContext(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "No Tenant Implemented"})
			return
		}
		c.Next()
	}
}
