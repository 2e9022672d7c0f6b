package draft

import "time"

// State 表示一次编辑会话中正在撰写的草稿快照。
// Tags 与 ImageURLs 保持调用方提供的顺序，本层不做去重。
type State struct {
	DraftID     string         `json:"draftId"`
	PostTitle   string         `json:"postTitle"`
	PostDesc    string         `json:"postDesc"`
	PostContent string         `json:"postContent"`
	Tags        []string       `json:"tags"`
	ImageURLs   []string       `json:"imageUrls"`
	Custom      map[string]any `json:"custom,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	IsTemporary bool           `json:"isTemporary"`
}

// Patch describes a partial update to a State. Nil fields are absent and
// leave the current value untouched; a non-nil empty slice or map replaces
// the current value with an empty one.
type Patch struct {
	DraftID     *string
	PostTitle   *string
	PostDesc    *string
	PostContent *string
	Tags        []string
	ImageURLs   []string
	Custom      map[string]any
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
	IsTemporary *bool
}

// HasContent reports whether the draft carries anything worth persisting.
// 标题、描述、正文全为空时视为空草稿。
func (s State) HasContent() bool {
	return s.PostTitle != "" || s.PostDesc != "" || s.PostContent != ""
}

// Clone returns a deep copy so callers can hold a snapshot without racing
// later mutations.
func (s State) Clone() State {
	out := s
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
	}
	if s.ImageURLs != nil {
		out.ImageURLs = append([]string(nil), s.ImageURLs...)
	}
	if s.Custom != nil {
		out.Custom = make(map[string]any, len(s.Custom))
		for k, v := range s.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

func defaultState(now time.Time) State {
	return State{
		Tags:      []string{},
		ImageURLs: []string{},
		Custom:    map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// String pointer helpers for building patches.

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// TimePtr returns a pointer to v.
func TimePtr(v time.Time) *time.Time { return &v }
