package draft

import (
	"reflect"
	"sync"
	"time"
)

// Store 是编辑会话内唯一的草稿状态容器。
// 所有写入都必须经过 Update，依赖其结构化比较来抑制无效写放大；
// 本地与远端两条持久化通道只读取快照，互不加锁。
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewStore creates a store holding a default, draft-id-less state.
func NewStore() *Store {
	return &Store{
		state: defaultState(time.Now()),
		subs:  make(map[int]func(State)),
	}
}

// Get returns a deep copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called with a snapshot after every accepted
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Update merges the defined fields of p into the current state. When every
// defined field is structurally equal to the current value the call is a
// no-op: no state transition, no subscriber notification, no timestamp
// churn. It reports whether the mutation was accepted.
//
// 一旦 DraftID 非空，后续補丁不能再将其清空。
func (s *Store) Update(p Patch) bool {
	s.mu.Lock()

	next := s.state.Clone()
	changed := false

	if p.DraftID != nil && *p.DraftID != "" && *p.DraftID != next.DraftID {
		next.DraftID = *p.DraftID
		changed = true
	}
	if p.PostTitle != nil && *p.PostTitle != next.PostTitle {
		next.PostTitle = *p.PostTitle
		changed = true
	}
	if p.PostDesc != nil && *p.PostDesc != next.PostDesc {
		next.PostDesc = *p.PostDesc
		changed = true
	}
	if p.PostContent != nil && *p.PostContent != next.PostContent {
		next.PostContent = *p.PostContent
		changed = true
	}
	if p.Tags != nil && !stringSlicesEqual(p.Tags, next.Tags) {
		next.Tags = append([]string(nil), p.Tags...)
		changed = true
	}
	if p.ImageURLs != nil && !stringSlicesEqual(p.ImageURLs, next.ImageURLs) {
		next.ImageURLs = append([]string(nil), p.ImageURLs...)
		changed = true
	}
	if p.Custom != nil && !reflect.DeepEqual(p.Custom, next.Custom) {
		next.Custom = make(map[string]any, len(p.Custom))
		for k, v := range p.Custom {
			next.Custom[k] = v
		}
		changed = true
	}
	if p.CreatedAt != nil && !p.CreatedAt.Equal(next.CreatedAt) {
		next.CreatedAt = *p.CreatedAt
		changed = true
	}
	if p.IsTemporary != nil && *p.IsTemporary != next.IsTemporary {
		next.IsTemporary = *p.IsTemporary
		changed = true
	}

	if !changed {
		s.mu.Unlock()
		return false
	}

	if p.UpdatedAt != nil {
		next.UpdatedAt = *p.UpdatedAt
	} else {
		next.UpdatedAt = s.tickUpdatedAt()
	}

	s.state = next
	snapshot := next.Clone()
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return true
}

// Reset restores every field to its default: empty strings, empty
// collections, no draft id, fresh timestamps, IsTemporary false.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = defaultState(time.Now())
	snapshot := s.state.Clone()
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// tickUpdatedAt 保证 UpdatedAt 在粗粒度时钟下依然严格递增。
func (s *Store) tickUpdatedAt() time.Time {
	now := time.Now()
	if !now.After(s.state.UpdatedAt) {
		return s.state.UpdatedAt.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) snapshotSubs() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
