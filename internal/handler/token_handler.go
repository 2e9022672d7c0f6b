package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/service"
)

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IssueToken 用账号密码换取 Bearer 凭证。
func (a *API) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	token, expiresAt, err := a.auth.IssueToken(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "签发凭证失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}
