package editor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftlog/internal/bridge"
	"github.com/draftlog/internal/draft"
	"github.com/draftlog/internal/localstore"
	"github.com/draftlog/internal/remote"
)

type scriptedForm struct {
	mu      sync.Mutex
	snap    bridge.Snapshot
	changes chan struct{}
}

func newScriptedForm() *scriptedForm {
	return &scriptedForm{changes: make(chan struct{}, 16)}
}

func (f *scriptedForm) Snapshot() bridge.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *scriptedForm) Changes() <-chan struct{} { return f.changes }

func (f *scriptedForm) typeInto(snap bridge.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	f.changes <- struct{}{}
}

type sessionAuth struct{ state remote.SignInState }

func (a sessionAuth) SignInState() remote.SignInState { return a.state }

func (a sessionAuth) Token(context.Context) (string, error) { return "tok", nil }

type sessionNet struct{ online atomic.Bool }

func (n *sessionNet) Online() bool { return n.online.Load() }

func draftServiceStub(requests *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		json.NewEncoder(w).Encode(remote.SaveResponse{Success: true, DraftID: "srv-id"})
	}))
}

func testConfig(form *scriptedForm, srvURL string, online bool) Config {
	net := &sessionNet{}
	net.online.Store(online)
	return Config{
		Form:           form,
		KV:             localstore.NewMemKV(),
		Client:         remote.NewClient(srvURL),
		Auth:           sessionAuth{state: remote.SignedIn},
		Network:        net,
		Debounce:       20 * time.Millisecond,
		LocalInterval:  30 * time.Millisecond,
		RemoteInterval: 40 * time.Millisecond,
	}
}

func TestNewSessionStartsWithDefaults(t *testing.T) {
	srv := draftServiceStub(nil)
	defer srv.Close()

	sess, err := NewSession(testConfig(newScriptedForm(), srv.URL, false))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	state := sess.Store().Get()
	if state.PostTitle != "" || state.DraftID != "" || state.IsTemporary {
		t.Fatalf("expected default state, got %+v", state)
	}
}

func TestSessionSeedsInitialDraftSynchronously(t *testing.T) {
	srv := draftServiceStub(nil)
	defer srv.Close()

	cfg := testConfig(newScriptedForm(), srv.URL, false)
	cfg.Initial = &draft.State{
		DraftID:   "seed-1",
		PostTitle: "resumed",
		Tags:      []string{"go"},
		CreatedAt: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	// 种子必须在构造返回时就可见，不经过防抖
	state := sess.Store().Get()
	if state.PostTitle != "resumed" || state.DraftID != "seed-1" {
		t.Fatalf("seed not applied synchronously: %+v", state)
	}
}

func TestSessionTypingReachesLocalStorage(t *testing.T) {
	srv := draftServiceStub(nil)
	defer srv.Close()

	form := newScriptedForm()
	cfg := testConfig(form, srv.URL, false)
	kv := localstore.NewMemKV()
	cfg.KV = kv

	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	form.typeInto(bridge.Snapshot{PostTitle: "Hello"})

	time.Sleep(50 * time.Millisecond)
	if got := sess.Store().Get().PostTitle; got != "Hello" {
		t.Fatalf("debounced merge missing, title %q", got)
	}

	// 本地通道随后应把快照写入 draft_<id>
	time.Sleep(100 * time.Millisecond)
	id := sess.Store().Get().DraftID
	if id == "" {
		t.Fatal("local channel must assign a draft id")
	}
	raw, ok, err := kv.Get(localstore.Key(id))
	if err != nil || !ok {
		t.Fatalf("local snapshot missing: ok=%v err=%v", ok, err)
	}
	var stored draft.State
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored snapshot invalid: %v", err)
	}
	if stored.PostTitle != "Hello" {
		t.Fatalf("stored title %q", stored.PostTitle)
	}
}

func TestSessionOfflineKeepsLocalOnly(t *testing.T) {
	var requests atomic.Int64
	srv := draftServiceStub(&requests)
	defer srv.Close()

	form := newScriptedForm()
	cfg := testConfig(form, srv.URL, false) // offline
	kv := localstore.NewMemKV()
	cfg.KV = kv

	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	form.typeInto(bridge.Snapshot{PostTitle: "offline typing"})
	time.Sleep(200 * time.Millisecond)

	if got := requests.Load(); got != 0 {
		t.Fatalf("offline session must never hit the server, got %d requests", got)
	}

	id := sess.Store().Get().DraftID
	if _, ok, _ := kv.Get(localstore.Key(id)); !ok {
		t.Fatal("local channel must keep writing while offline")
	}
}

func TestSessionFetchDraftAppliesImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(remote.FetchResponse{
				Success: true,
				Data:    &draft.State{DraftID: "d-7", PostTitle: "Loaded"},
			})
			return
		}
		json.NewEncoder(w).Encode(remote.SaveResponse{Success: true, DraftID: "d-7"})
	}))
	defer srv.Close()

	sess, err := NewSession(testConfig(newScriptedForm(), srv.URL, true))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	if err := sess.FetchDraft(context.Background(), "d-7"); err != nil {
		t.Fatalf("FetchDraft failed: %v", err)
	}
	if got := sess.Store().Get().PostTitle; got != "Loaded" {
		t.Fatalf("fetch must apply before returning, title %q", got)
	}
}

func TestSessionDiscardResets(t *testing.T) {
	srv := draftServiceStub(nil)
	defer srv.Close()

	form := newScriptedForm()
	sess, err := NewSession(testConfig(form, srv.URL, false))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	form.typeInto(bridge.Snapshot{PostTitle: "drop me"})
	time.Sleep(50 * time.Millisecond)

	sess.Discard()
	if got := sess.Store().Get().PostTitle; got != "" {
		t.Fatalf("discard must reset the store, title %q", got)
	}
}

func TestNewSessionValidatesDependencies(t *testing.T) {
	if _, err := NewSession(Config{}); err == nil {
		t.Fatal("expected an error for missing collaborators")
	}
}
