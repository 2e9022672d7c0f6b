// Package editor 把草稿引擎的各个部件装配成一次编辑会话。
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/draftlog/internal/bridge"
	"github.com/draftlog/internal/draft"
	"github.com/draftlog/internal/localstore"
	"github.com/draftlog/internal/notify"
	"github.com/draftlog/internal/remote"
)

// Config bundles the collaborators a session needs. Form, KV, Client, Auth
// and Network are required; everything else is optional.
type Config struct {
	Form    bridge.FormSource
	Images  bridge.ImageSource
	KV      localstore.KV
	Client  *remote.Client
	Auth    remote.AuthProvider
	Network remote.Network

	// Initial seeds the store synchronously before the bridge starts,
	// e.g. from a previously fetched draft.
	Initial *draft.State

	Debounce       time.Duration
	LocalInterval  time.Duration
	RemoteInterval time.Duration
	AutoHide       time.Duration
}

// Session owns one live draft and the timers that keep it persisted. It is
// constructed per editing session and torn down with Close; the store is
// only ever reachable through it.
type Session struct {
	store   *draft.Store
	bridge  *bridge.Bridge
	local   *localstore.Channel
	remote  *remote.Channel
	surface *notify.Surface

	closeOnce sync.Once
}

// NewSession wires and starts a session. The initial draft, when provided,
// is merged synchronously so the first debounce window never races the
// seed.
func NewSession(cfg Config) (*Session, error) {
	switch {
	case cfg.Form == nil:
		return nil, errors.New("editor: form source is required")
	case cfg.KV == nil:
		return nil, errors.New("editor: local storage is required")
	case cfg.Client == nil:
		return nil, errors.New("editor: remote client is required")
	case cfg.Auth == nil:
		return nil, errors.New("editor: auth provider is required")
	case cfg.Network == nil:
		return nil, errors.New("editor: network status is required")
	}

	store := draft.NewStore()

	// 会话初始化是同步的，种子数据不经过防抖路径
	if cfg.Initial != nil {
		seed := *cfg.Initial
		patch := draft.Patch{
			DraftID:     draft.StringPtr(seed.DraftID),
			PostTitle:   draft.StringPtr(seed.PostTitle),
			PostDesc:    draft.StringPtr(seed.PostDesc),
			PostContent: draft.StringPtr(seed.PostContent),
			Tags:        seed.Tags,
			ImageURLs:   seed.ImageURLs,
			Custom:      seed.Custom,
			IsTemporary: draft.BoolPtr(seed.IsTemporary),
		}
		// 零值时间戳视为缺失，保留 Store 的初始时间
		if !seed.CreatedAt.IsZero() {
			patch.CreatedAt = draft.TimePtr(seed.CreatedAt)
		}
		if !seed.UpdatedAt.IsZero() {
			patch.UpdatedAt = draft.TimePtr(seed.UpdatedAt)
		}
		store.Update(patch)
	}

	br := bridge.New(store, cfg.Form)
	br.SetDebounce(cfg.Debounce)
	if cfg.Images != nil {
		br.SetImageSource(cfg.Images)
	}

	local := localstore.NewChannel(store, cfg.KV)
	local.SetInterval(cfg.LocalInterval)

	rem := remote.NewChannel(store, cfg.Client, cfg.Auth, cfg.Network)
	rem.SetInterval(cfg.RemoteInterval)

	surface := notify.NewSurface(rem, local)
	if cfg.AutoHide > 0 {
		surface.SetAutoHide(cfg.AutoHide)
	}

	br.Start()
	local.Start()
	rem.Start()

	return &Session{
		store:   store,
		bridge:  br,
		local:   local,
		remote:  rem,
		surface: surface,
	}, nil
}

// Store exposes the session's draft store.
func (s *Session) Store() *draft.Store { return s.store }

// Notifications exposes the save-status projection.
func (s *Session) Notifications() *notify.Surface { return s.surface }

// TemporarySave submits the current draft immediately, marked temporary.
func (s *Session) TemporarySave(ctx context.Context) error {
	return s.remote.TemporarySave(ctx)
}

// FetchDraft loads a persisted draft into the store.
func (s *Session) FetchDraft(ctx context.Context, draftID string) error {
	return s.remote.FetchDraft(ctx, draftID)
}

// LoadLocal returns the on-device snapshot for a draft id, if present.
func (s *Session) LoadLocal(draftID string) (draft.State, bool, error) {
	return s.local.Load(draftID)
}

// Discard resets the draft to defaults, e.g. when the user abandons it.
func (s *Session) Discard() {
	s.store.Reset()
}

// Close tears down the bridge and both persistence channels. Pending
// debounced merges are dropped and in-flight remote results are discarded.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.bridge.Close()
		s.local.Close()
		s.remote.Close()
	})
}
