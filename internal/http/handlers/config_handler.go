package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantgate/internal/tenancy"
)

// CheckTenant reports whether the request's hostname resolved to a tenant.
// Bare boolean body, no auth, no side effects.
func CheckTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tenancy.FromContext(c.Request.Context()) != nil)
	}
}
