package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/service"
)

// BearerAuthRequired 校验 Authorization: Bearer <token> 并注入当前用户。
func BearerAuthRequired(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "缺少有效的 Bearer 凭证",
			})
			return
		}

		user, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "凭证无效或已过期",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
