package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/pkg/logger"
)

// Middleware handles bearer-token authentication for all protected routes
type Middleware struct {
	issuer *TokenIssuer
	users  user.Repository
}

// NewMiddleware creates a new authentication middleware instance
func NewMiddleware(issuer *TokenIssuer, users user.Repository) *Middleware {
	return &Middleware{issuer: issuer, users: users}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED", "message": message})
	c.Abort()
}

// Authenticate is the gin middleware handler for access-token authentication
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Missing Authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			unauthorized(c, "Invalid Authorization header: empty token")
			return
		}
		claims, err := m.issuer.Verify(tokenStr)
		if err != nil {
			log.Debug("Access token validation failed", "error", err)
			switch err {
			case ErrTokenExpired:
				unauthorized(c, "Access token expired")
			default:
				unauthorized(c, "Invalid access token")
			}
			return
		}
		u, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Debug("Token user lookup failed", "user_id", claims.UserID, "error", err)
			unauthorized(c, "Invalid access token")
			return
		}
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user has one of the
// given roles.
func RequireRole(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UserFromContext(c.Request.Context())
		if u == nil {
			unauthorized(c, "Authentication required")
			return
		}
		for _, role := range roles {
			if u.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN", "message": "Insufficient role"})
		c.Abort()
	}
}
