package remote

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/draftlog/internal/draft"
)

// DefaultInterval is the cadence of the remote autosave loop.
const DefaultInterval = 30 * time.Second

// SignInState 是认证提供方暴露的三态登录状态。
type SignInState int

const (
	SignInUnknown SignInState = iota
	SignedIn
	SignedOut
)

// AuthProvider is the boundary to the authentication collaborator.
type AuthProvider interface {
	SignInState() SignInState
	Token(ctx context.Context) (string, error)
}

// Network reports platform connectivity.
type Network interface {
	Online() bool
}

// Status is a snapshot of the remote channel for observers.
//
// LastAttempt 对应原实现中无论成败都会刷新的 lastSaved；
// LastSuccess 只在服务端确认成功后刷新，两者刻意分开暴露。
type Status struct {
	Saving      bool
	LastAttempt time.Time
	LastSuccess time.Time
}

// Channel periodically submits the draft store snapshot to the remote draft
// service. Unmet preconditions (offline, not signed in, no token) silently
// defer the cycle. A tick that fires while a save is still in flight is
// skipped.
type Channel struct {
	store   *draft.Store
	client  *Client
	auth    AuthProvider
	network Network

	interval time.Duration

	mu          sync.Mutex
	saving      bool
	closed      bool
	lastAttempt time.Time
	lastSuccess time.Time

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// NewChannel wires the channel to its collaborators.
func NewChannel(store *draft.Store, client *Client, auth AuthProvider, network Network) *Channel {
	return &Channel{
		store:    store,
		client:   client,
		auth:     auth,
		network:  network,
		interval: DefaultInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetInterval overrides the save cadence. Must be called before Start.
func (c *Channel) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Start launches the autosave loop.
func (c *Channel) Start() {
	c.startOnce.Do(func() {
		go c.loop()
	})
}

// Close stops the loop. An in-flight request is allowed to settle but its
// result is discarded.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stop)
		<-c.done
	})
}

// Status reports the channel's saving flag and attempt/success timestamps.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{Saving: c.saving, LastAttempt: c.lastAttempt, LastSuccess: c.lastSuccess}
}

func (c *Channel) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick 执行一轮远端保存。前置条件不满足时静默顺延，不算错误。
func (c *Channel) tick() {
	if !c.network.Online() {
		return
	}
	if c.auth.SignInState() != SignedIn {
		return
	}

	// 超时交给 HTTP 客户端自身的 Timeout 控制
	ctx := context.Background()

	token, err := c.auth.Token(ctx)
	if err != nil || token == "" {
		return
	}

	c.mu.Lock()
	if c.saving || c.closed {
		c.mu.Unlock()
		return
	}
	c.saving = true
	c.mu.Unlock()

	// 发送前重读快照：上一次判断与本次发送之间 Store 可能已被改写
	snap := c.store.Get()

	resp, err := c.client.AutoSave(ctx, snap, token)
	c.settle(snap, resp, err)
}

// settle records the outcome of a save attempt, dropping it entirely when
// the channel was closed while the request was in flight.
func (c *Channel) settle(sent draft.State, resp SaveResponse, err error) {
	now := time.Now()

	c.mu.Lock()
	c.saving = false
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.lastAttempt = now
	if err == nil && resp.Success {
		c.lastSuccess = now
	}
	c.mu.Unlock()

	switch {
	case err != nil:
		log.Printf("remote: auto-save draft %s: %v", sent.DraftID, err)
	case !resp.Success:
		log.Printf("remote: auto-save draft %s rejected: %s", sent.DraftID, resp.Message)
	default:
		// 服务端指派的 id 必须回流 Store，保持各通道身份一致
		if resp.DraftID != "" && sent.DraftID == "" {
			c.store.Update(draft.Patch{DraftID: draft.StringPtr(resp.DraftID)})
		}
	}
}
