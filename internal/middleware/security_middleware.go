package middleware

import (
	"net/http"
	"strings"

	"eterno-store/internal/auth"
	"eterno-store/internal/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// AuthMiddleware checks the Bearer JWT and stores the caller's Principal on
// the context for handlers to pass into services.
func AuthMiddleware(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abort(c, http.StatusUnauthorized, "Authorization header must start with Bearer")
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// OptionalAuth sets the Principal when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if claims, err := m.ValidateToken(tokenString); err == nil {
				c.Set(principalKey, claims.Principal())
			}
		}
		c.Next()
	}
}

// RequireRole is a secondary guard in front of a route group. Services check
// the role again on every call.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if err := p.RequireRole(roles...); err != nil {
			status := http.StatusForbidden
			if !p.Authenticated() {
				status = http.StatusUnauthorized
			}
			abort(c, status, err.Error())
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the caller, or the anonymous zero Principal.
func CurrentPrincipal(c *gin.Context) auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(auth.Principal); ok {
			return p
		}
	}
	return auth.Principal{}
}
