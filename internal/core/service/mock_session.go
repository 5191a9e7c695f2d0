package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/adapter"
	"github.com/pulseconnect/hybrid-client/internal/core/broadcast"
	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
)

// Latency is the simulated round-trip time per mock operation.
type Latency struct {
	SignIn    time.Duration
	SignUp    time.Duration
	Federated time.Duration
	SignOut   time.Duration
	Update    time.Duration
	Reset     time.Duration
	Resend    time.Duration
}

// DefaultLatency keeps loading states visible when running offline.
func DefaultLatency() Latency {
	return Latency{
		SignIn:    500 * time.Millisecond,
		SignUp:    800 * time.Millisecond,
		Federated: time.Second,
		SignOut:   300 * time.Millisecond,
		Update:    500 * time.Millisecond,
		Reset:     time.Second,
		Resend:    800 * time.Millisecond,
	}
}

var (
	errEmailNotFound = domain.NewUserError(domain.CodeNotFound, "no account found for this email")
	errEmailTaken    = domain.NewUserError(domain.CodeAlreadyExists, "this email is already in use, try signing in")
)

// MockSessionService emulates authentication against the local store.
//
// Passwords are never checked: any password signs in an existing account.
// Offline mode intentionally runs with this weaker posture.
type MockSessionService struct {
	store   *localstore.Store
	latency Latency
	log     zerolog.Logger

	mu      sync.Mutex
	current *broadcast.Broadcaster[*domain.Account]
}

// NewMockSessionService restores the persisted offline session, if any.
func NewMockSessionService(store *localstore.Store, latency Latency, log zerolog.Logger) (*MockSessionService, error) {
	u, err := store.CurrentUser()
	if err != nil {
		return nil, err
	}
	var acc *domain.Account
	if u != nil {
		a := adapter.AccountFromLocal(*u)
		acc = &a
	}
	return &MockSessionService{
		store:   store,
		latency: latency,
		log:     log,
		current: broadcast.New("mock-session", acc, domain.SameAccount, log),
	}, nil
}

// Current returns the signed-in account, or nil.
func (s *MockSessionService) Current() *domain.Account {
	return s.current.Current()
}

// OnSessionChange replays the current account, then reports changes.
// Listeners run after the session lock is released and may call back into
// the service.
func (s *MockSessionService) OnSessionChange(fn func(*domain.Account)) func() {
	return s.current.Subscribe(fn)
}

func (s *MockSessionService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := s.wait(ctx, s.latency.SignIn); err != nil {
		return nil, err
	}
	return s.exclusive(func() (*domain.Session, error) {
		u, ok, err := s.store.UserByEmail(email)
		if err != nil {
			return nil, s.storeFailed("sign_in", err)
		}
		if !ok {
			return nil, errEmailNotFound
		}
		return s.begin(u)
	})
}

func (s *MockSessionService) SignUp(ctx context.Context, in domain.SignUp) (*domain.Session, error) {
	in, err := normaliseSignUp(in)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx, s.latency.SignUp); err != nil {
		return nil, err
	}
	return s.exclusive(func() (*domain.Session, error) {
		if _, exists, err := s.store.UserByEmail(in.Email); err != nil {
			return nil, s.storeFailed("sign_up", err)
		} else if exists {
			return nil, errEmailTaken
		}

		bio, skills, rate := newAccountProfile(in.Role)
		u, err := localstore.Create(s.store, localstore.Users, localstore.User{
			Email:      in.Email,
			Name:       in.DisplayName,
			UserType:   string(in.Role),
			Bio:        bio,
			Skills:     skills,
			HourlyRate: rate,
			Location:   defaultLocation,
		})
		if err != nil {
			return nil, s.storeFailed("sign_up", err)
		}
		s.log.Info().Str("account_id", u.ID).Str("role", u.UserType).Msg("offline account created")
		return s.begin(u)
	})
}

// SignInFederated signs into the single demo federated account, creating
// it on first use.
func (s *MockSessionService) SignInFederated(ctx context.Context) (*domain.Session, error) {
	if err := s.wait(ctx, s.latency.Federated); err != nil {
		return nil, err
	}
	return s.exclusive(func() (*domain.Session, error) {
		u, ok, err := s.store.UserByEmail(federatedDemoEmail)
		if err != nil {
			return nil, s.storeFailed("sign_in_federated", err)
		}
		if !ok {
			u, err = localstore.Create(s.store, localstore.Users, localstore.User{
				Email:    federatedDemoEmail,
				Name:     federatedDemoName,
				UserType: string(domain.RoleClient),
				Bio:      federatedDemoBio,
				Location: defaultLocation,
			})
			if err != nil {
				return nil, s.storeFailed("sign_in_federated", err)
			}
		}
		return s.begin(u)
	})
}

// SignOut clears the session. Signing out twice is harmless.
func (s *MockSessionService) SignOut(ctx context.Context) error {
	if err := s.wait(ctx, s.latency.SignOut); err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.store.ClearCurrentUser(); err != nil {
		s.log.Warn().Err(err).Msg("clear offline session failed")
	}
	s.mu.Unlock()

	s.current.Set(nil)
	return nil
}

func (s *MockSessionService) UpdateProfile(ctx context.Context, patch domain.AccountPatch) (*domain.Session, error) {
	if s.current.Current() == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if err := s.wait(ctx, s.latency.Update); err != nil {
		return nil, err
	}
	return s.exclusive(func() (*domain.Session, error) {
		cur := s.current.Current()
		if cur == nil {
			return nil, domain.ErrNotAuthenticated
		}
		u, ok, err := localstore.Update(s.store, localstore.Users, cur.ID, func(u *localstore.User) {
			adapter.ApplyPatch(u, patch)
		})
		if err != nil {
			return nil, s.storeFailed("update_profile", err)
		}
		if !ok {
			return nil, domain.NewUserError(domain.CodeNotFound, "account no longer exists")
		}
		return s.begin(u)
	})
}

// ResetPassword only confirms the account exists; no mail leaves offline mode.
func (s *MockSessionService) ResetPassword(ctx context.Context, email string) error {
	return s.lookup(ctx, s.latency.Reset, email)
}

// ResendConfirmation only confirms the account exists.
func (s *MockSessionService) ResendConfirmation(ctx context.Context, email string) error {
	return s.lookup(ctx, s.latency.Resend, email)
}

func (s *MockSessionService) lookup(ctx context.Context, d time.Duration, email string) error {
	if err := s.wait(ctx, d); err != nil {
		return err
	}
	_, ok, err := s.store.UserByEmail(email)
	if err != nil {
		return s.storeFailed("lookup", err)
	}
	if !ok {
		return errEmailNotFound
	}
	return nil
}

// exclusive runs fn under s.mu and announces the session it returns once
// the lock is released.
func (s *MockSessionService) exclusive(fn func() (*domain.Session, error)) (*domain.Session, error) {
	s.mu.Lock()
	sess, err := fn()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	acc := sess.Account
	s.current.Set(&acc)
	return sess, nil
}

// begin persists u as the current session. Caller holds s.mu.
func (s *MockSessionService) begin(u localstore.User) (*domain.Session, error) {
	if err := s.store.SetCurrentUser(u); err != nil {
		return nil, s.storeFailed("persist_session", err)
	}
	return &domain.Session{Account: adapter.AccountFromLocal(u), StartedAt: time.Now().UTC()}, nil
}

func (s *MockSessionService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return domain.NewUserError(domain.CodeUnavailable, "request cancelled")
	}
}

func (s *MockSessionService) storeFailed(op string, err error) error {
	var ue *domain.UserError
	if errors.As(err, &ue) {
		return ue
	}
	s.log.Error().Err(err).Str("op", op).Msg("local store failure")
	return domain.ErrInternal
}
