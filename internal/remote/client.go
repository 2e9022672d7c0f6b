// Package remote 负责草稿到服务端的持久化：定时通道与手动保存/拉取。
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftlog/internal/draft"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SaveResponse is the draft service reply to an auto-save or temporary-save.
type SaveResponse struct {
	Success bool   `json:"success"`
	DraftID string `json:"draftId"`
	Message string `json:"message"`
}

// FetchResponse is the draft service reply to a fetch.
type FetchResponse struct {
	Success bool         `json:"success"`
	Data    *draft.State `json:"data"`
	Message string       `json:"message"`
}

// Client talks to the remote draft service.
type Client struct {
	baseURL string
	http    httpDoer
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// SetHTTPClient 允许测试注入自定义的 HTTP 实现。
func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
		return
	}
	c.http = client
}

// AutoSave submits the snapshot on the ambient autosave path.
func (c *Client) AutoSave(ctx context.Context, state draft.State, token string) (SaveResponse, error) {
	return c.postDraft(ctx, "/draft/auto-save", state, token)
}

// TemporarySave submits the snapshot as an explicit temporary save.
func (c *Client) TemporarySave(ctx context.Context, state draft.State, token string) (SaveResponse, error) {
	return c.postDraft(ctx, "/draft/temporary-save", state, token)
}

// Fetch retrieves a previously persisted draft by id.
func (c *Client) Fetch(ctx context.Context, draftID, token string) (FetchResponse, error) {
	endpoint := c.baseURL + "/draft/fetch/" + draftID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("创建拉取请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	respBody, status, err := c.do(req)
	if err != nil {
		return FetchResponse{}, err
	}

	var out FetchResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return FetchResponse{}, fmt.Errorf("解析草稿服务响应失败: %w", err)
	}
	if status >= http.StatusBadRequest {
		return FetchResponse{}, fmt.Errorf("草稿服务返回错误：%s", responseMessage(out.Message, respBody, status))
	}
	return out, nil
}

func (c *Client) postDraft(ctx context.Context, path string, state draft.State, token string) (SaveResponse, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return SaveResponse{}, fmt.Errorf("构造保存请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return SaveResponse{}, fmt.Errorf("创建保存请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	respBody, status, err := c.do(req)
	if err != nil {
		return SaveResponse{}, err
	}

	var out SaveResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return SaveResponse{}, fmt.Errorf("解析草稿服务响应失败: %w", err)
	}
	if status >= http.StatusBadRequest {
		return SaveResponse{}, fmt.Errorf("草稿服务返回错误：%s", responseMessage(out.Message, respBody, status))
	}
	return out, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("请求草稿服务失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("读取草稿服务响应失败: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func responseMessage(message string, raw []byte, status int) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}
