package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理管理会话登录
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	user, err := a.auth.VerifyPassword(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登录成功", "username": user.Username})
}

// Logout 处理管理会话登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "已登出"})
}

// SessionAuthRequired 是一个简单的会话认证中间件
func SessionAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}

// ListDrafts 列出当前管理会话用户的全部草稿
func (a *API) ListDrafts(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get("user_id").(uint)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	rows, err := a.drafts.List(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取草稿列表失败")
		return
	}

	response := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		response = append(response, gin.H{
			"draftId":     row.DraftID,
			"postTitle":   row.PostTitle,
			"isTemporary": row.IsTemporary,
			"updatedAt":   row.ClientUpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"drafts": response})
}

// DeleteDraft 删除指定草稿
func (a *API) DeleteDraft(c *gin.Context) {
	if err := a.drafts.Delete(c.Param("draftId")); err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			respondError(c, http.StatusNotFound, "草稿不存在")
		default:
			respondError(c, http.StatusInternalServerError, "删除草稿失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "草稿已删除"})
}
