package localstore

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/draftlog/internal/draft"
)

// DefaultInterval is the cadence of the on-device autosave loop.
const DefaultInterval = 10 * time.Second

// KeyPrefix 与草稿 id 组合成存储键，避免多篇草稿互相覆盖。
const KeyPrefix = "draft_"

// Key derives the storage key for a draft id.
func Key(draftID string) string { return KeyPrefix + draftID }

// Status is a snapshot of the channel for observers.
type Status struct {
	Saving    bool
	LastSaved time.Time
}

// Channel periodically serializes the draft store to on-device storage.
// A failed write only skips the current cycle; the ticker never stops until
// Close. Writes whose serialization matches the last successful one for the
// same key are suppressed entirely.
type Channel struct {
	store *draft.Store
	kv    KV

	interval time.Duration

	mu          sync.Mutex
	saving      bool
	lastSaved   time.Time
	lastWritten map[string]string

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// NewChannel creates a channel writing store snapshots into kv.
func NewChannel(store *draft.Store, kv KV) *Channel {
	return &Channel{
		store:       store,
		kv:          kv,
		interval:    DefaultInterval,
		lastWritten: make(map[string]string),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
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

// Close stops the loop. Safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

// Status reports whether a write is running and when the last one landed.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{Saving: c.saving, LastSaved: c.lastSaved}
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

// tick 执行一轮本地保存，任何失败都只记录日志并等待下个周期。
func (c *Channel) tick() {
	snap := c.store.Get()

	// 空草稿不落盘
	if !snap.HasContent() {
		return
	}

	// 草稿 id 统一经由 Store 指派，保证远端通道看到同一身份
	if snap.DraftID == "" {
		id := uuid.NewString()
		c.store.Update(draft.Patch{DraftID: draft.StringPtr(id)})
		snap = c.store.Get()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("localstore: serialize draft %s: %v", snap.DraftID, err)
		return
	}

	key := Key(snap.DraftID)

	c.mu.Lock()
	if c.lastWritten[key] == string(payload) {
		c.mu.Unlock()
		return
	}
	c.saving = true
	c.mu.Unlock()

	err = c.kv.Set(key, string(payload))

	c.mu.Lock()
	c.saving = false
	if err == nil {
		c.lastWritten[key] = string(payload)
		c.lastSaved = time.Now()
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("localstore: write draft %s: %v", snap.DraftID, err)
	}
}

// Load returns the stored snapshot for a draft id, if any.
func (c *Channel) Load(draftID string) (draft.State, bool, error) {
	raw, ok, err := c.kv.Get(Key(draftID))
	if err != nil || !ok {
		return draft.State{}, false, err
	}

	var state draft.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return draft.State{}, false, err
	}
	return state, true, nil
}
