package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("draftlog_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 凭证签发
	r.POST("/auth/token", api.IssueToken)

	// 草稿同步接口，需要 Bearer 凭证
	draftGroup := r.Group("/draft")
	draftGroup.Use(handler.BearerAuthRequired(api.Auth()))
	{
		draftGroup.POST("/auto-save", api.AutoSaveDraft)
		draftGroup.POST("/temporary-save", api.TemporarySaveDraft)
		draftGroup.GET("/fetch/:draftId", api.FetchDraft)
		draftGroup.GET("/preview/:draftId", api.PreviewDraft)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.SessionAuthRequired())
		{
			adminAPI := auth.Group("/api")
			{
				adminAPI.GET("/drafts", api.ListDrafts)
				adminAPI.DELETE("/drafts/:draftId", api.DeleteDraft)
			}
		}
	}

	return r
}
