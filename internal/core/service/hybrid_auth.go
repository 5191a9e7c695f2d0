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
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const remoteEventTimeout = 5 * time.Second

// authority records which backend owns the current session.
type authority int

const (
	authorityNone authority = iota
	authorityRemote
	authorityMock
)

// AuthConfig carries the redirect targets handed to the remote auth service.
type AuthConfig struct {
	OAuthRedirectURL         string
	PasswordResetRedirectURL string
}

// HybridAuthService serves authentication from the remote backend when it
// is usable and from the mock session service otherwise.
type HybridAuthService struct {
	remote ports.RemoteBackend
	mock   *MockSessionService
	fb     *fallback
	cfg    AuthConfig
	log    zerolog.Logger

	mu        sync.Mutex
	authority authority
	accounts  *broadcast.Broadcaster[*domain.Account]
	unsubs    []func()
}

var _ ports.AuthService = (*HybridAuthService)(nil)

// NewHybridAuthService subscribes to both session sources. Build it after
// the connectivity monitor has started so a restored remote session can be
// resolved.
func NewHybridAuthService(
	remote ports.RemoteBackend,
	mock *MockSessionService,
	policy *Policy,
	reach ports.Reachability,
	recorder ports.Recorder,
	cfg AuthConfig,
	log zerolog.Logger,
) *HybridAuthService {
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}
	s := &HybridAuthService{
		remote:   remote,
		mock:     mock,
		fb:       &fallback{policy: policy, reach: reach, recorder: recorder, log: log},
		cfg:      cfg,
		log:      log,
		accounts: broadcast.New[*domain.Account]("auth", nil, domain.SameAccount, log),
	}
	s.unsubs = append(s.unsubs, mock.OnSessionChange(s.onMockChange))
	s.unsubs = append(s.unsubs, remote.OnAuthStateChange(s.onRemoteEvent))
	return s
}

// Close detaches from both session sources.
func (s *HybridAuthService) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// OnAuthStateChange replays the current account (nil when signed out) and
// then reports every change, whichever backend caused it.
func (s *HybridAuthService) OnAuthStateChange(fn func(*domain.Account)) func() {
	return s.accounts.Subscribe(fn)
}

func (s *HybridAuthService) CurrentAccount(ctx context.Context) (*domain.Account, error) {
	if s.fb.policy.Decide(ctx) == UseRemote {
		acc, err := s.remoteCurrent(ctx)
		if err == nil && acc != nil {
			return acc, nil
		}
		if err != nil {
			if uerr := s.fb.surface("auth.current_account", err, nil); uerr != nil {
				return nil, uerr
			}
		}
	}
	return s.mock.Current(), nil
}

func (s *HybridAuthService) remoteCurrent(ctx context.Context) (*domain.Account, error) {
	u, err := s.remote.CurrentUser(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return s.resolveAccount(ctx, "auth.current_account", u)
}

func (s *HybridAuthService) SignInWithEmail(ctx context.Context, email, password string) (*domain.Account, error) {
	if email == "" || password == "" {
		return nil, domain.NewUserError(domain.CodeInvalidInput, "email and password are required")
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		acc, err := s.remoteSignIn(ctx, email, password)
		if err == nil {
			s.adoptRemote(acc)
			return acc, nil
		}
		if uerr := s.fb.surface("auth.sign_in", err, nil); uerr != nil {
			return nil, uerr
		}
	}

	sess, err := s.mock.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &sess.Account, nil
}

func (s *HybridAuthService) remoteSignIn(ctx context.Context, email, password string) (*domain.Account, error) {
	u, err := s.remote.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	acc, err := s.resolveAccount(ctx, "auth.sign_in", u)
	if err != nil {
		s.discardRemote(ctx)
		return nil, err
	}
	return acc, nil
}

// SignUpWithEmail creates the account and its profile. The account is only
// announced as signed in when the backend opened a session for it.
func (s *HybridAuthService) SignUpWithEmail(ctx context.Context, in domain.SignUp) (*domain.Account, error) {
	in, err := normaliseSignUp(in)
	if err != nil {
		return nil, err
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		acc, signedIn, err := s.remoteSignUp(ctx, in)
		if err == nil {
			if signedIn {
				s.adoptRemote(acc)
			}
			return acc, nil
		}
		if uerr := s.fb.surface("auth.sign_up", err, nil); uerr != nil {
			return nil, uerr
		}
	}

	sess, err := s.mock.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}
	return &sess.Account, nil
}

func (s *HybridAuthService) remoteSignUp(ctx context.Context, in domain.SignUp) (*domain.Account, bool, error) {
	u, err := s.remote.SignUp(ctx, in.Email, in.Password, map[string]any{
		"full_name": in.DisplayName,
		"user_type": string(in.Role),
	})
	if err != nil {
		return nil, false, err
	}

	acc, err := s.insertProfile(ctx, u, in)
	if err == nil {
		return acc, u.HasSession, nil
	}
	if connectionLost(err) {
		if u.HasSession {
			s.discardRemote(ctx)
		}
		return nil, false, err
	}
	// The identity exists either way; the profile row can be created later.
	s.log.Warn().Err(err).Str("op", "auth.sign_up").Str("kind", ports.KindOf(err).String()).
		Str("account_id", u.ID).Msg("profile insert failed, using identity")
	id := accountFromIdentity(u)
	id.DisplayName = in.DisplayName
	id.Role = in.Role
	return &id, u.HasSession, nil
}

func (s *HybridAuthService) insertProfile(ctx context.Context, u *ports.RemoteUser, in domain.SignUp) (*domain.Account, error) {
	bio, skills, rate := newAccountProfile(in.Role)
	raw, err := s.remote.Insert(ctx, adapter.TableProfiles, adapter.ProfileInsert{
		UserID:     u.ID,
		FullName:   in.DisplayName,
		UserType:   string(in.Role),
		Bio:        bio,
		Location:   defaultLocation,
		Skills:     skills,
		HourlyRate: rate,
	}, adapter.ProfileColumns)
	if err != nil {
		return nil, err
	}
	row, err := adapter.DecodeRow[adapter.ProfileRow](raw)
	if err != nil {
		return nil, err
	}
	acc := adapter.AccountFromProfileRow(row)
	if acc.Email == "" {
		acc.Email = u.Email
	}
	return &acc, nil
}

// SignInWithProvider starts a federated sign-in. Online, the caller gets a
// URL to send the user to; offline, the demo federated account signs in
// immediately.
func (s *HybridAuthService) SignInWithProvider(ctx context.Context, provider string) (*domain.FederatedSignIn, error) {
	if provider == "" {
		provider = federatedDemoProvider
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		url, err := s.remote.SignInWithOAuth(ctx, provider, s.cfg.OAuthRedirectURL)
		if err == nil {
			return &domain.FederatedSignIn{RedirectURL: url}, nil
		}
		if uerr := s.fb.surface("auth.sign_in_provider", err, nil); uerr != nil {
			return nil, uerr
		}
	}

	sess, err := s.mock.SignInFederated(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.FederatedSignIn{Account: &sess.Account}, nil
}

// SignOut ends both sessions whatever the connectivity state. The remote
// client drops its held session before revoking it, so a failed revocation
// still leaves nothing to restore. Signing out twice is harmless.
func (s *HybridAuthService) SignOut(ctx context.Context) error {
	s.discardRemote(ctx)
	if err := s.mock.SignOut(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.authority = authorityNone
	s.mu.Unlock()
	s.accounts.Set(nil)
	return nil
}

// UpdateProfile patches the signed-in account's profile. Role cannot be
// changed.
func (s *HybridAuthService) UpdateProfile(ctx context.Context, patch domain.AccountPatch) (*domain.Account, error) {
	if patch.HourlyRate != nil && *patch.HourlyRate < 0 {
		return nil, domain.NewUserError(domain.CodeInvalidInput, "hourly rate cannot be negative")
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		acc, err := s.remoteUpdateProfile(ctx, patch)
		if err == nil && acc != nil {
			if s.isAuthority(authorityRemote) {
				s.accounts.Set(acc)
			}
			return acc, nil
		}
		if err != nil {
			if uerr := s.fb.surface("auth.update_profile", err, nil); uerr != nil {
				return nil, uerr
			}
		}
	}

	sess, err := s.mock.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}
	return &sess.Account, nil
}

// remoteUpdateProfile returns nil without error when there is no remote
// session, leaving the call to the mock session.
func (s *HybridAuthService) remoteUpdateProfile(ctx context.Context, patch domain.AccountPatch) (*domain.Account, error) {
	u, err := s.remote.CurrentUser(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	raw, err := s.remote.Update(ctx, adapter.TableProfiles,
		[]ports.Filter{ports.Eq("user_id", u.ID)},
		adapter.PatchToProfileRow(patch), adapter.ProfileColumns)
	if err != nil {
		return nil, err
	}
	row, err := adapter.DecodeRow[adapter.ProfileRow](raw)
	if err != nil {
		return nil, err
	}
	acc := adapter.AccountFromProfileRow(row)
	if acc.Email == "" {
		acc.Email = u.Email
	}
	return &acc, nil
}

func (s *HybridAuthService) ResetPassword(ctx context.Context, email string) error {
	if !validEmail(email) {
		return domain.NewUserError(domain.CodeInvalidInput, "a valid email is required")
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		err := s.remote.ResetPasswordForEmail(ctx, email, s.cfg.PasswordResetRedirectURL)
		if err == nil {
			return nil
		}
		if uerr := s.fb.surface("auth.reset_password", err, nil); uerr != nil {
			return uerr
		}
	}
	return s.mock.ResetPassword(ctx, email)
}

func (s *HybridAuthService) ResendConfirmation(ctx context.Context, email string) error {
	if !validEmail(email) {
		return domain.NewUserError(domain.CodeInvalidInput, "a valid email is required")
	}
	if s.fb.policy.Decide(ctx) == UseRemote {
		err := s.remote.ResendConfirmation(ctx, email)
		if err == nil {
			return nil
		}
		if uerr := s.fb.surface("auth.resend_confirmation", err, nil); uerr != nil {
			return uerr
		}
	}
	return s.mock.ResendConfirmation(ctx, email)
}

// resolveAccount loads the profile behind a remote identity. Unless the
// connection itself failed, an unreadable profile degrades to an account
// built from the identity so a held remote session always maps to one.
func (s *HybridAuthService) resolveAccount(ctx context.Context, op string, u *ports.RemoteUser) (*domain.Account, error) {
	acc, err := s.loadProfile(ctx, u)
	if err == nil {
		return acc, nil
	}
	if connectionLost(err) {
		return nil, err
	}
	kind := ports.KindOf(err)
	ev := s.log.Warn()
	if kind == ports.RemoteStructural {
		ev = s.log.Error()
	}
	ev.Err(err).Str("op", op).Str("kind", kind.String()).Str("account_id", u.ID).
		Msg("profile unavailable, using identity")
	id := accountFromIdentity(u)
	return &id, nil
}

// discardRemote ends the remote session, logging revocation failures.
func (s *HybridAuthService) discardRemote(ctx context.Context) {
	if err := s.remote.SignOut(ctx); err != nil {
		s.log.Debug().Err(err).Msg("remote sign out failed, session dropped locally")
	}
}

func connectionLost(err error) bool {
	return errors.Is(err, context.Canceled) || ports.KindOf(err) == ports.RemoteTransport
}

// loadProfile resolves a remote identity into an account. A missing profile
// row yields an account built from the identity's metadata.
func (s *HybridAuthService) loadProfile(ctx context.Context, u *ports.RemoteUser) (*domain.Account, error) {
	raw, err := s.remote.Select(ctx, adapter.TableProfiles, ports.Query{
		Columns: adapter.ProfileColumns,
		Filters: []ports.Filter{ports.Eq("user_id", u.ID)},
		Single:  true,
	})
	if err != nil {
		if ports.KindOf(err) == ports.RemoteNotFound {
			acc := accountFromIdentity(u)
			return &acc, nil
		}
		return nil, err
	}
	row, err := adapter.DecodeRow[adapter.ProfileRow](raw)
	if err != nil {
		return nil, err
	}
	acc := adapter.AccountFromProfileRow(row)
	if acc.Email == "" {
		acc.Email = u.Email
	}
	return &acc, nil
}

func accountFromIdentity(u *ports.RemoteUser) domain.Account {
	name, _ := u.Metadata["full_name"].(string)
	if name == "" {
		name = defaultDisplayName
	}
	role := domain.RoleFreelancer
	if r, _ := u.Metadata["user_type"].(string); domain.Role(r).Valid() {
		role = domain.Role(r)
	}
	return domain.Account{ID: u.ID, Email: u.Email, DisplayName: name, Role: role}
}

func (s *HybridAuthService) adoptRemote(acc *domain.Account) {
	s.mu.Lock()
	s.authority = authorityRemote
	s.mu.Unlock()
	s.accounts.Set(acc)
}

func (s *HybridAuthService) isAuthority(a authority) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authority == a
}

func (s *HybridAuthService) onMockChange(acc *domain.Account) {
	s.mu.Lock()
	if acc == nil && s.authority != authorityMock {
		s.mu.Unlock()
		return
	}
	if acc != nil {
		s.authority = authorityMock
	} else {
		s.authority = authorityNone
	}
	s.mu.Unlock()
	s.accounts.Set(acc)
}

// onRemoteEvent forwards remote session changes while the remote backend
// is authoritative. SIGNED_IN is announced by the call that signed in.
func (s *HybridAuthService) onRemoteEvent(ev ports.RemoteAuthEvent) {
	if ev.User == nil {
		if s.isAuthority(authorityRemote) {
			s.mu.Lock()
			s.authority = authorityNone
			s.mu.Unlock()
			s.accounts.Set(nil)
		}
		return
	}
	switch ev.Event {
	case ports.AuthEventSignedIn:
		return
	case ports.AuthEventInitialSession:
		if s.isAuthority(authorityMock) {
			return
		}
	default:
		if !s.isAuthority(authorityRemote) {
			return
		}
	}
	if !s.fb.reach.IsReachable() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteEventTimeout)
	defer cancel()
	acc, err := s.resolveAccount(ctx, "auth.session_event", ev.User)
	if err != nil {
		s.fb.surface("auth.session_event", err, nil)
		return
	}
	s.log.Debug().Str("event", ev.Event).Str("account_id", acc.ID).Msg("remote session event")
	s.adoptRemote(acc)
}
