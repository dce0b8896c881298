package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"tenantgate/internal/auth"
	"tenantgate/internal/metrics"
	"tenantgate/internal/models"
	"tenantgate/internal/rbac"
)

// Login authenticates credentials under the guard and returns a bearer
// token. Unknown email and wrong password produce the identical 401 body.
func Login(a *auth.Authenticator, guard auth.Guard, audit AuditRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if !bindJSON(c, &input) {
			return
		}

		issued, err := a.Login(c.Request.Context(), guard, input.Email, input.Password)
		if err != nil {
			metrics.LoginAttempts.WithLabelValues(guard.String(), "denied").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		metrics.LoginAttempts.WithLabelValues(guard.String(), "ok").Inc()

		if audit != nil {
			meta, _ := json.Marshal(map[string]string{"guard": guard.String(), "email": input.Email})
			_ = audit.Append(c.Request.Context(), &models.AuditLog{
				Action:       "auth.login",
				ResourceType: "user",
				Metadata:     datatypes.JSON(meta),
				IP:           c.ClientIP(),
				UserAgent:    c.GetHeader("User-Agent"),
				CreatedAt:    time.Now(),
			})
		}

		c.JSON(http.StatusOK, issued)
	}
}

// Me returns the authenticated principal with its effective permission set.
func Me(r *rbac.Resolver, guard auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := principal(c)
		perms := r.Effective(c.Request.Context(), guard.String(), user)

		c.JSON(http.StatusOK, gin.H{
			"user":        user,
			"permissions": perms,
		})
	}
}

// Logout invalidates the presented token.
func Logout(a *auth.Authenticator, guard auth.Guard, audit AuditRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(auth.CtxToken)
		if err := a.Logout(c.Request.Context(), guard, token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if audit != nil {
			user := principal(c)
			meta, _ := json.Marshal(map[string]string{"guard": guard.String()})
			_ = audit.Append(c.Request.Context(), &models.AuditLog{
				UserID:        user.ID,
				Action:        "auth.logout",
				ResourceType:  "user",
				ResourceID:    user.ID,
				Metadata:      datatypes.JSON(meta),
				IP:            c.ClientIP(),
				InitiatorName: user.Name,
				UserAgent:     c.GetHeader("User-Agent"),
				CreatedAt:     time.Now(),
			})
		}

		c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
	}
}

// Refresh rotates the presented token; the old one stops working.
func Refresh(a *auth.Authenticator, guard auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(auth.CtxToken)
		issued, err := a.Refresh(c.Request.Context(), guard, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, issued)
	}
}

func principal(c *gin.Context) *models.User {
	user, _ := c.MustGet(auth.CtxPrincipal).(*models.User)
	return user
}
