package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftlog/internal/draft"
)

var (
	ErrOffline     = errors.New("network is offline")
	ErrNotSignedIn = errors.New("user is not signed in")
	ErrNoToken     = errors.New("no bearer credential available")
	ErrDraftAbsent = errors.New("draft not found")
)

// TemporarySave submits the current snapshot immediately, marking the
// persisted copy as a temporary save. Unlike the ambient loop it reports
// every failure to the caller so the UI can show a direct result.
func (c *Channel) TemporarySave(ctx context.Context) error {
	token, err := c.credential(ctx)
	if err != nil {
		return err
	}

	// 手动保存前先经由 Store 指派草稿 id，避免身份在通道间分裂
	snap := c.store.Get()
	if snap.DraftID == "" {
		id := uuid.NewString()
		c.store.Update(draft.Patch{DraftID: draft.StringPtr(id)})
		snap = c.store.Get()
	}
	snap.IsTemporary = true

	resp, err := c.client.TemporarySave(ctx, snap, token)
	c.settle(snap, resp, err)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("temporary save rejected: %s", resp.Message)
	}
	return nil
}

// FetchDraft retrieves a persisted draft and overlays the store with it.
// On any failure the store is left untouched and the error is returned.
func (c *Channel) FetchDraft(ctx context.Context, draftID string) error {
	token, err := c.credential(ctx)
	if err != nil {
		return err
	}

	resp, err := c.client.Fetch(ctx, draftID, token)
	if err != nil {
		return err
	}
	if !resp.Success || resp.Data == nil {
		if resp.Message != "" {
			return fmt.Errorf("%w: %s", ErrDraftAbsent, resp.Message)
		}
		return ErrDraftAbsent
	}

	// 这是 Store 唯一合法的整体覆写路径
	fetched := *resp.Data
	patch := draft.Patch{
		DraftID:     draft.StringPtr(fetched.DraftID),
		PostTitle:   draft.StringPtr(fetched.PostTitle),
		PostDesc:    draft.StringPtr(fetched.PostDesc),
		PostContent: draft.StringPtr(fetched.PostContent),
		Tags:        coerce(fetched.Tags),
		ImageURLs:   coerce(fetched.ImageURLs),
		Custom:      coerceMap(fetched.Custom),
		IsTemporary: draft.BoolPtr(fetched.IsTemporary),
	}
	// 服务端缺失的时间戳按当前会话时间处理
	if !fetched.CreatedAt.IsZero() {
		patch.CreatedAt = draft.TimePtr(fetched.CreatedAt)
	}
	if !fetched.UpdatedAt.IsZero() {
		patch.UpdatedAt = draft.TimePtr(fetched.UpdatedAt)
	}
	c.store.Update(patch)
	return nil
}

// credential 校验手动操作的前置条件，与定时通道不同，这里失败要上抛。
func (c *Channel) credential(ctx context.Context) (string, error) {
	if !c.network.Online() {
		return "", ErrOffline
	}
	if c.auth.SignInState() != SignedIn {
		return "", ErrNotSignedIn
	}
	token, err := c.auth.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func coerce(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func coerceMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return in
}
