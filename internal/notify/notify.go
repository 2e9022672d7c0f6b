// Package notify 把保存状态投影成可供界面直接渲染的只读视图。
package notify

import (
	"fmt"
	"time"

	"github.com/draftlog/internal/localstore"
	"github.com/draftlog/internal/remote"
)

// DefaultAutoHide is how long the "just saved" notice stays visible.
const DefaultAutoHide = 3 * time.Second

// RemoteStatus exposes the remote channel's observable state.
type RemoteStatus interface {
	Status() remote.Status
}

// LocalStatus exposes the local channel's observable state.
type LocalStatus interface {
	Status() localstore.Status
}

// View is what the UI renders. The surface only reads channel state and
// never writes anything back.
type View struct {
	Visible bool
	Saving  bool
	Message string
	SavedAt time.Time
}

// Surface projects the two persistence channels into a View.
type Surface struct {
	remote   RemoteStatus
	local    LocalStatus
	autoHide time.Duration
}

// NewSurface creates a surface over the given channels. Either may be nil.
func NewSurface(remote RemoteStatus, local LocalStatus) *Surface {
	return &Surface{remote: remote, local: local, autoHide: DefaultAutoHide}
}

// SetAutoHide overrides the visibility window of the saved notice.
func (s *Surface) SetAutoHide(d time.Duration) {
	if d > 0 {
		s.autoHide = d
	}
}

// At computes the view for the given instant. Pass time.Now() outside of
// tests.
//
// 这里沿用原产品行为：展示的是最近一次“尝试”的时间戳（原 lastSaved），
// 无论该次尝试是否成功；需要真实成功时间的调用方应读取通道的 LastSuccess。
func (s *Surface) At(now time.Time) View {
	var rs remote.Status
	if s.remote != nil {
		rs = s.remote.Status()
	}
	var ls localstore.Status
	if s.local != nil {
		ls = s.local.Status()
	}

	if rs.Saving || ls.Saving {
		return View{Visible: true, Saving: true, Message: "正在保存…"}
	}

	savedAt := rs.LastAttempt
	if ls.LastSaved.After(savedAt) {
		savedAt = ls.LastSaved
	}
	if savedAt.IsZero() || now.Sub(savedAt) >= s.autoHide {
		return View{}
	}

	return View{
		Visible: true,
		Message: fmt.Sprintf("已保存 %s", savedAt.Format("15:04:05")),
		SavedAt: savedAt,
	}
}
