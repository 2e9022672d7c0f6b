package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/db"
)

const userContextKey = "__current_user"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondDraftError 按草稿服务的统一响应契约返回失败。
func respondDraftError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "draftId": "", "message": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// currentUser returns the user the bearer middleware resolved, if any.
func currentUser(c *gin.Context) (*db.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*db.User)
	return user, ok
}
