// Package bridge 将高频的表单编辑事件降频合并进草稿 Store。
package bridge

import (
	"sync"
	"time"

	"github.com/draftlog/internal/draft"
)

// DefaultDebounce is the quiesce window applied to form changes.
const DefaultDebounce = time.Second

// Snapshot carries the current values of the editable form fields.
type Snapshot struct {
	PostTitle   string
	PostDesc    string
	PostContent string
	Tags        []string
}

// FormSource is the boundary to the live editing surface. Snapshot must be
// safe to call at any time; Changes delivers a signal whenever any editable
// field changed.
type FormSource interface {
	Snapshot() Snapshot
	Changes() <-chan struct{}
}

// ImageSource supplies the externally-owned image URL list. The upload
// pipeline owns the slice contents; the bridge only copies it along.
type ImageSource interface {
	URLs() []string
}

// Bridge watches a FormSource and, after each burst of changes quiesces,
// merges the latest snapshot into the store with a single Update call.
type Bridge struct {
	store  *draft.Store
	form   FormSource
	images ImageSource

	window time.Duration

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a bridge for the given store and form. Call Start to begin
// watching.
func New(store *draft.Store, form FormSource) *Bridge {
	return &Bridge{
		store:  store,
		form:   form,
		window: DefaultDebounce,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// SetDebounce overrides the debounce window. Must be called before Start.
func (b *Bridge) SetDebounce(d time.Duration) {
	if d > 0 {
		b.window = d
	}
}

// SetImageSource attaches the image URL collaborator. Must be called before
// Start.
func (b *Bridge) SetImageSource(src ImageSource) {
	b.images = src
}

// Start launches the watch loop. It is safe to call once per bridge.
func (b *Bridge) Start() {
	b.startOnce.Do(func() {
		go b.loop()
	})
}

// Close tears down the change subscription and the debounce timer. A merge
// still pending when Close is called is discarded; the store is never
// mutated after Close returns.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.stop)
		<-b.done
	})
}

func (b *Bridge) loop() {
	defer close(b.done)

	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-b.stop:
			return
		case <-b.form.Changes():
			// 窗口内的多次修改合并为一次写入
			if timer == nil {
				timer = time.NewTimer(b.window)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(b.window)
			}
		case <-fire:
			timer = nil
			fire = nil
			b.merge()
		}
	}
}

func (b *Bridge) merge() {
	snap := b.form.Snapshot()

	patch := draft.Patch{
		PostTitle:   draft.StringPtr(snap.PostTitle),
		PostDesc:    draft.StringPtr(snap.PostDesc),
		PostContent: draft.StringPtr(snap.PostContent),
		Tags:        coerceSlice(snap.Tags),
	}
	if b.images != nil {
		patch.ImageURLs = coerceSlice(b.images.URLs())
	}

	b.store.Update(patch)
}

// coerceSlice 将缺失的切片归一为空切片，避免把 nil 透传进 Store。
func coerceSlice(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
