package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by Middleware.
const (
	CtxPrincipal = "principal"
	CtxClaims    = "claims"
	CtxToken     = "token"
)

// Middleware validates the bearer token for one guard and loads the
// principal behind it. Missing, invalid, expired, revoked, and wrong-guard
// tokens all get the same 401 body.
func Middleware(a *Authenticator, guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, claims, err := a.CurrentPrincipal(c.Request.Context(), guard, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(CtxPrincipal, user)
		c.Set(CtxClaims, claims)
		c.Set(CtxToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
