package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rivohq/opsflow/internal/domain/entity"
)

const scopeContextKey = "tenant_scope"

// tenantScopeMiddleware reads the tenant headers into a TenantScope on the
// request context. Absent headers leave the scope open; an upstream gateway
// is expected to enforce authentication and inject them.
func tenantScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var scope entity.TenantScope

		if v := c.GetHeader("X-Organisation-ID"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				scope.OrganisationID = id
			}
		}
		if v := c.GetHeader("X-Branch-ID"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				scope.BranchID = id
			}
		}

		c.Set(scopeContextKey, scope)
		c.Next()
	}
}

// requestScope returns the tenant scope bound by the middleware
func requestScope(c *gin.Context) entity.TenantScope {
	if v, ok := c.Get(scopeContextKey); ok {
		if scope, ok := v.(entity.TenantScope); ok {
			return scope
		}
	}
	return entity.TenantScope{}
}
