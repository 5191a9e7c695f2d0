package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
)

func newTestMock(t *testing.T, store *localstore.Store) *MockSessionService {
	t.Helper()
	m, err := NewMockSessionService(store, Latency{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMockSessionService: %v", err)
	}
	return m
}

func TestMockSignIn_SeedAccount(t *testing.T) {
	m := newTestMock(t, newTestStore(t))

	sess, err := m.SignIn(context.Background(), localstore.SeedFreelancerEmail, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Account.ID != "user-2" {
		t.Errorf("expected user-2, got %q", sess.Account.ID)
	}
	if sess.Account.Role != domain.RoleFreelancer {
		t.Errorf("expected freelancer role, got %q", sess.Account.Role)
	}
	if cur := m.Current(); cur == nil || cur.ID != "user-2" {
		t.Errorf("expected current session for user-2, got %+v", cur)
	}
}

func TestMockSignIn_UnknownEmail(t *testing.T) {
	m := newTestMock(t, newTestStore(t))

	_, err := m.SignIn(context.Background(), "nobody@example.com", "pw")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if m.Current() != nil {
		t.Error("failed sign in must not open a session")
	}
}

func TestMockSignUp_DefaultsAndDuplicate(t *testing.T) {
	m := newTestMock(t, newTestStore(t))
	ctx := context.Background()

	sess, err := m.SignUp(ctx, domain.SignUp{Email: "new@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acc := sess.Account
	if acc.Role != domain.RoleFreelancer {
		t.Errorf("expected default role freelancer, got %q", acc.Role)
	}
	if acc.DisplayName != defaultDisplayName {
		t.Errorf("expected default display name, got %q", acc.DisplayName)
	}
	if acc.HourlyRate == nil || *acc.HourlyRate != defaultHourlyRate {
		t.Errorf("expected default hourly rate, got %v", acc.HourlyRate)
	}
	if acc.Location != defaultLocation {
		t.Errorf("expected default location, got %q", acc.Location)
	}

	_, err = m.SignUp(ctx, domain.SignUp{Email: "new@example.com", Password: "pw"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMockSignUp_ClientHasNoRate(t *testing.T) {
	m := newTestMock(t, newTestStore(t))

	sess, err := m.SignUp(context.Background(), domain.SignUp{
		Email: "boss@example.com", Password: "pw", DisplayName: "Boss", Role: domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Account.HourlyRate != nil {
		t.Errorf("clients start without an hourly rate, got %v", *sess.Account.HourlyRate)
	}
}

func TestMockSignUp_RejectsBadInput(t *testing.T) {
	m := newTestMock(t, newTestStore(t))
	ctx := context.Background()

	cases := []domain.SignUp{
		{Email: "not-an-email", Password: "pw"},
		{Email: "x@example.com", Password: "pw", Role: domain.RoleAdmin},
	}
	for _, in := range cases {
		if _, err := m.SignUp(ctx, in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("SignUp(%+v): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestMockSession_SurvivesRestart(t *testing.T) {
	store := newTestStore(t)
	first := newTestMock(t, store)
	if _, err := first.SignIn(context.Background(), localstore.SeedClientEmail, "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	second := newTestMock(t, store)
	cur := second.Current()
	if cur == nil || cur.ID != "user-1" {
		t.Fatalf("expected restored session for user-1, got %+v", cur)
	}
}

func TestMockSignOut_Idempotent(t *testing.T) {
	store := newTestStore(t)
	m := newTestMock(t, store)
	ctx := context.Background()
	if _, err := m.SignIn(ctx, localstore.SeedClientEmail, "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var seen []*domain.Account
	unsub := m.OnSessionChange(func(a *domain.Account) { seen = append(seen, a) })
	defer unsub()

	for i := 0; i < 2; i++ {
		if err := m.SignOut(ctx); err != nil {
			t.Fatalf("sign out #%d: %v", i+1, err)
		}
	}
	if len(seen) != 2 || seen[0] == nil || seen[1] != nil {
		t.Fatalf("expected replay then a single sign-out event, got %d events", len(seen))
	}
	if u, _ := store.CurrentUser(); u != nil {
		t.Error("persisted session should be cleared")
	}
}

func TestMockFederated_CreatesOnce(t *testing.T) {
	store := newTestStore(t)
	m := newTestMock(t, store)
	ctx := context.Background()

	a, err := m.SignInFederated(ctx)
	if err != nil {
		t.Fatalf("first federated sign in: %v", err)
	}
	b, err := m.SignInFederated(ctx)
	if err != nil {
		t.Fatalf("second federated sign in: %v", err)
	}
	if a.Account.ID != b.Account.ID {
		t.Errorf("expected the same demo account, got %q and %q", a.Account.ID, b.Account.ID)
	}
	if a.Account.Email != federatedDemoEmail {
		t.Errorf("unexpected demo email %q", a.Account.Email)
	}
	users, _ := localstore.List(store, localstore.Users)
	if len(users) != 4 {
		t.Errorf("expected 3 seed users plus the demo account, got %d", len(users))
	}
}

func TestMockUpdateProfile(t *testing.T) {
	m := newTestMock(t, newTestStore(t))
	ctx := context.Background()
	bio := "Go developer"

	if _, err := m.UpdateProfile(ctx, domain.AccountPatch{Bio: &bio}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if _, err := m.SignIn(ctx, localstore.SeedFreelancerEmail, "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	sess, err := m.UpdateProfile(ctx, domain.AccountPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Account.Bio != bio {
		t.Errorf("expected bio %q, got %q", bio, sess.Account.Bio)
	}
	if sess.Account.DisplayName != "Mary Freelancer" {
		t.Errorf("unpatched fields must be kept, got %q", sess.Account.DisplayName)
	}
	if m.Current().Bio != bio {
		t.Error("current session should reflect the patch")
	}
}

func TestMockResetPassword(t *testing.T) {
	m := newTestMock(t, newTestStore(t))
	ctx := context.Background()

	if err := m.ResetPassword(ctx, localstore.SeedClientEmail); err != nil {
		t.Errorf("known email: unexpected error %v", err)
	}
	if err := m.ResendConfirmation(ctx, "ghost@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown email: expected ErrNotFound, got %v", err)
	}
}

func TestMockLatency_HonoursCancellation(t *testing.T) {
	m, err := NewMockSessionService(newTestStore(t), Latency{SignIn: time.Minute}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMockSessionService: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = m.SignIn(ctx, localstore.SeedClientEmail, "pw")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation should cut the simulated latency short")
	}
	if m.Current() != nil {
		t.Error("cancelled sign in must not open a session")
	}
}

func TestMockSession_ListenerMayCallBack(t *testing.T) {
	m := newTestMock(t, newTestStore(t))
	loc := "Porto"

	var once sync.Once
	updated := make(chan error, 1)
	defer m.OnSessionChange(func(acc *domain.Account) {
		if acc == nil {
			return
		}
		once.Do(func() {
			_, err := m.UpdateProfile(context.Background(), domain.AccountPatch{Location: &loc})
			updated <- err
		})
	})()

	done := make(chan error, 1)
	go func() {
		_, err := m.SignIn(context.Background(), localstore.SeedClientEmail, "pw")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("sign in: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("a listener calling back into the session blocked sign in")
	}

	if err := <-updated; err != nil {
		t.Fatalf("update from listener: %v", err)
	}
	if cur := m.Current(); cur == nil || cur.Location != loc {
		t.Errorf("expected the listener's patch to be current, got %+v", cur)
	}
}
