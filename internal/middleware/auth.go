package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gymtrack/gymtrack-api/internal/auth"
)

const (
	ContextPrincipalID = "principalID"
	ContextRole        = "principalRole"
	ContextTokenID     = "tokenID"
	ContextTokenExp    = "tokenExp"
)

func AuthMiddleware(tokens *auth.TokenService, blacklist auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(ContextPrincipalID, claims.ID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.TokenID)
		c.Set(ContextTokenExp, claims.ExpiresAt)

		c.Next()
	}
}

// Principal rebuilds the authenticated actor from the request context.
func Principal(c *gin.Context) auth.Principal {
	return auth.Principal{
		Role: c.MustGet(ContextRole).(string),
		ID:   c.MustGet(ContextPrincipalID).(uint),
	}
}
