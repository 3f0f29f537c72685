package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TenantHeader is set by the upstream gateway after authentication. This core
// trusts it as already authorized.
const TenantHeader = "X-Tenant-ID"

const tenantContextKey = "tenantID"

// TenantContextMiddleware requires a tenant scope on every authenticated
// route. Requests without one never reach a handler.
func TenantContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(TenantHeader)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing tenant context"})
			return
		}
		c.Set(tenantContextKey, tenantID)
		c.Next()
	}
}

// TenantID returns the tenant scope attached by TenantContextMiddleware.
func TenantID(c *gin.Context) string {
	return c.GetString(tenantContextKey)
}
