package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fsdevblog/shortlink/internal/tokens"
	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// AdminAuthMiddleware пропускает только запросы с действующим токеном администратора
// в заголовке Authorization: Bearer <token>.
func AdminAuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		_, err := tokens.ValidateAdminJWT(strings.TrimPrefix(header, bearerPrefix), jwtSecret)
		if err != nil {
			_ = c.Error(fmt.Errorf("admin auth middleware: %w", err))
			if errors.Is(err, tokens.ErrNotAdmin) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}
