package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantgate/internal/models"
	"tenantgate/internal/rbac"
)

// ListPermissions returns every permission of the requested guard's domain.
// Missing guard param defaults to system; unknown guards are a 400.
func ListPermissions(r *rbac.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		guard := c.DefaultQuery("guard", models.GuardSystem)

		perms, err := r.ListByGuard(c.Request.Context(), guard)
		if errors.Is(err, rbac.ErrInvalidGuard) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if perms == nil {
			perms = []models.Permission{}
		}
		c.JSON(http.StatusOK, perms)
	}
}

// TenantPermissions returns the tenant-store permissions matching the
// current customer's direct grants.
func TenantPermissions(r *rbac.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, err := r.TenantVisible(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, perms)
	}
}
