package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftlog/internal/db"
	"github.com/draftlog/internal/draft"
	"github.com/draftlog/internal/service"
)

// AutoSaveDraft 处理定时自动保存提交的草稿快照。
func (a *API) AutoSaveDraft(c *gin.Context) {
	a.saveDraft(c, false)
}

// TemporarySaveDraft 处理用户主动触发的临时保存。
func (a *API) TemporarySaveDraft(c *gin.Context) {
	a.saveDraft(c, true)
}

func (a *API) saveDraft(c *gin.Context, markTemporary bool) {
	user, ok := currentUser(c)
	if !ok {
		respondDraftError(c, http.StatusUnauthorized, "未授权")
		return
	}

	var payload draft.State
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondDraftError(c, http.StatusBadRequest, "草稿内容格式不正确")
		return
	}

	input := service.DraftInput{
		DraftID:     payload.DraftID,
		PostTitle:   payload.PostTitle,
		PostDesc:    payload.PostDesc,
		PostContent: payload.PostContent,
		Tags:        payload.Tags,
		ImageURLs:   payload.ImageURLs,
		Custom:      payload.Custom,
		CreatedAt:   payload.CreatedAt,
		UpdatedAt:   payload.UpdatedAt,
		IsTemporary: payload.IsTemporary || markTemporary,
		UserID:      user.ID,
	}

	row, err := a.drafts.Save(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftForbidden):
			respondDraftError(c, http.StatusForbidden, "无权修改该草稿")
		default:
			respondDraftError(c, http.StatusInternalServerError, "保存草稿失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"draftId": row.DraftID,
		"message": "草稿已保存",
	})
}

// FetchDraft 返回指定 id 的草稿快照。
func (a *API) FetchDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "data": nil, "message": "未授权"})
		return
	}

	row, err := a.drafts.Fetch(c.Param("draftId"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "data": nil, "message": "草稿不存在"})
		case errors.Is(err, service.ErrDraftForbidden):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "data": nil, "message": "无权访问该草稿"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "data": nil, "message": "获取草稿失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draftToState(row),
		"message": "",
	})
}

// PreviewDraft 渲染草稿正文的 HTML 预览。
func (a *API) PreviewDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "未授权"})
		return
	}

	previewHTML, err := a.drafts.Preview(c.Param("draftId"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "草稿不存在"})
		case errors.Is(err, service.ErrDraftForbidden):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "无权访问该草稿"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "渲染预览失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"html":    previewHTML,
		"message": "",
	})
}

// draftToState 把落库行转换回客户端使用的快照形状。
func draftToState(row *db.Draft) draft.State {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	imageURLs := row.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	return draft.State{
		DraftID:     row.DraftID,
		PostTitle:   row.PostTitle,
		PostDesc:    row.PostDesc,
		PostContent: row.PostContent,
		Tags:        tags,
		ImageURLs:   imageURLs,
		Custom:      row.Custom,
		CreatedAt:   row.ClientCreatedAt,
		UpdatedAt:   row.ClientUpdatedAt,
		IsTemporary: row.IsTemporary,
	}
}
