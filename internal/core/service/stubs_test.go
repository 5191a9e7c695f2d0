package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Reachability stub
// ---------------------------------------------------------------------------

type stubReach struct {
	mu          sync.Mutex
	reachable   bool
	ensureCalls int
	marked      []error
}

func (r *stubReach) IsReachable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reachable
}

func (r *stubReach) EnsureReachable(context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCalls++
	return r.reachable
}

func (r *stubReach) MarkUnreachable(reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reachable = false
	r.marked = append(r.marked, reason)
}

func (r *stubReach) Subscribe(fn func(bool)) func() {
	fn(r.IsReachable())
	return func() {}
}

func (r *stubReach) setReachable(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reachable = v
}

func (r *stubReach) markedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.marked)
}

// ---------------------------------------------------------------------------
// Recorder stub
// ---------------------------------------------------------------------------

type stubRecorder struct {
	ports.NopRecorder
	mu        sync.Mutex
	fallbacks []string
}

func (r *stubRecorder) Fallback(op, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, op+":"+kind)
}

// ---------------------------------------------------------------------------
// Remote backend stub: every call is routed to an optional func field and
// fails with a transport error when the field is unset.
// ---------------------------------------------------------------------------

var errStubOffline = &ports.RemoteError{Kind: ports.RemoteTransport, Message: "connection refused"}

type stubRemote struct {
	selectFn  func(table string, q ports.Query) ([]byte, error)
	insertFn  func(table string, row any) ([]byte, error)
	updateFn  func(table string, filters []ports.Filter, patch any) ([]byte, error)
	signInFn  func(email, password string) (*ports.RemoteUser, error)
	signUpFn  func(email, password string, meta map[string]any) (*ports.RemoteUser, error)
	signOutFn func() error

	mu        sync.Mutex
	calls     map[string]int
	current   *ports.RemoteUser
	listeners []func(ports.RemoteAuthEvent)
}

func newStubRemote() *stubRemote {
	return &stubRemote{calls: make(map[string]int)}
}

func (r *stubRemote) count(name string) {
	r.mu.Lock()
	r.calls[name]++
	r.mu.Unlock()
}

func (r *stubRemote) callCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

// emit mimics the remote session holder announcing a change.
func (r *stubRemote) emit(ev ports.RemoteAuthEvent) {
	r.mu.Lock()
	ls := append([]func(ports.RemoteAuthEvent){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func (r *stubRemote) Ping(context.Context) error { return nil }

func (r *stubRemote) Select(_ context.Context, table string, q ports.Query) ([]byte, error) {
	r.count("select")
	if r.selectFn == nil {
		return nil, errStubOffline
	}
	return r.selectFn(table, q)
}

func (r *stubRemote) Insert(_ context.Context, table string, row any, _ string) ([]byte, error) {
	r.count("insert")
	if r.insertFn == nil {
		return nil, errStubOffline
	}
	return r.insertFn(table, row)
}

func (r *stubRemote) Update(_ context.Context, table string, filters []ports.Filter, patch any, _ string) ([]byte, error) {
	r.count("update")
	if r.updateFn == nil {
		return nil, errStubOffline
	}
	return r.updateFn(table, filters, patch)
}

func (r *stubRemote) SignInWithPassword(_ context.Context, email, password string) (*ports.RemoteUser, error) {
	r.count("sign_in")
	if r.signInFn == nil {
		return nil, errStubOffline
	}
	u, err := r.signInFn(email, password)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.current = u
	r.mu.Unlock()
	r.emit(ports.RemoteAuthEvent{Event: ports.AuthEventSignedIn, User: u})
	return u, nil
}

func (r *stubRemote) SignUp(_ context.Context, email, password string, meta map[string]any) (*ports.RemoteUser, error) {
	r.count("sign_up")
	if r.signUpFn == nil {
		return nil, errStubOffline
	}
	return r.signUpFn(email, password, meta)
}

func (r *stubRemote) SignInWithOAuth(_ context.Context, provider, redirectTo string) (string, error) {
	r.count("oauth")
	return "https://auth.example.test/authorize?provider=" + provider, nil
}

func (r *stubRemote) SignOut(context.Context) error {
	r.count("sign_out")
	if r.signOutFn != nil {
		if err := r.signOutFn(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	had := r.current != nil
	r.current = nil
	r.mu.Unlock()
	if had {
		r.emit(ports.RemoteAuthEvent{Event: ports.AuthEventSignedOut})
	}
	return nil
}

func (r *stubRemote) CurrentUser(context.Context) (*ports.RemoteUser, error) {
	r.count("current_user")
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, nil
}

func (r *stubRemote) ResetPasswordForEmail(context.Context, string, string) error {
	r.count("reset_password")
	return nil
}

func (r *stubRemote) ResendConfirmation(context.Context, string) error {
	r.count("resend")
	return nil
}

func (r *stubRemote) OnAuthStateChange(fn func(ports.RemoteAuthEvent)) func() {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	cur := r.current
	r.mu.Unlock()
	fn(ports.RemoteAuthEvent{Event: ports.AuthEventInitialSession, User: cur})
	return func() {}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// tickingClock advances one minute per reading so creation order is visible
// in timestamps.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(memory.NewKVStore(), localstore.WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

type fixture struct {
	store    *localstore.Store
	reach    *stubReach
	remote   *stubRemote
	recorder *stubRecorder
	mock     *MockSessionService
	auth     *HybridAuthService
	data     *HybridDataService
}

func newFixture(t *testing.T, reachable bool) *fixture {
	t.Helper()
	f := &fixture{
		store:    newTestStore(t),
		reach:    &stubReach{reachable: reachable},
		remote:   newStubRemote(),
		recorder: &stubRecorder{},
	}
	mock, err := NewMockSessionService(f.store, Latency{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("mock session: %v", err)
	}
	f.mock = mock
	policy := NewPolicy(f.reach, f.store)
	f.auth = NewHybridAuthService(f.remote, mock, policy, f.reach, f.recorder, AuthConfig{}, zerolog.Nop())
	t.Cleanup(f.auth.Close)
	f.data = NewHybridDataService(f.remote, f.store, policy, f.reach, f.recorder, zerolog.Nop())
	return f
}
