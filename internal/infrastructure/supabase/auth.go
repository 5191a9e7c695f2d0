package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// refreshMargin is how long before expiry an access token is renewed.
const refreshMargin = 30 * time.Second

type session struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    int64            `json:"expires_at"`
	User         ports.RemoteUser `json:"user"`
}

func (s *session) expiring(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Add(refreshMargin).Unix() >= s.ExpiresAt
}

func (s *session) userCopy() *ports.RemoteUser {
	u := s.User
	u.Metadata = maps.Clone(s.User.Metadata)
	u.HasSession = true
	return &u
}

type tokenResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int64             `json:"expires_in"`
	ExpiresAt    int64             `json:"expires_at"`
	User         *ports.RemoteUser `json:"user"`
}

// newSession fills the expiry and subject from the access token's claims
// when the response leaves them out.
func (c *Client) newSession(tr tokenResponse) (*session, error) {
	if tr.AccessToken == "" {
		return nil, &ports.RemoteError{Kind: ports.RemoteGeneric, Message: "token response without access token"}
	}
	s := &session{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken, ExpiresAt: tr.ExpiresAt}
	if tr.User != nil {
		s.User = *tr.User
	}

	sub, exp, err := tokenClaims(tr.AccessToken)
	if err != nil {
		c.log.Debug().Err(err).Msg("access token claims unreadable")
	}
	if s.ExpiresAt == 0 {
		switch {
		case !exp.IsZero():
			s.ExpiresAt = exp.Unix()
		case tr.ExpiresIn > 0:
			s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).Unix()
		}
	}
	if s.User.ID == "" {
		s.User.ID = sub
	}
	return s, nil
}

// tokenClaims reads sub and exp without verifying the signature; the token
// is only ever sent back to the server that issued it.
func tokenClaims(token string) (string, time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}, err
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Subject, exp, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*ports.RemoteUser, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  "grant_type=password",
		body:   map[string]string{"email": email, "password": password},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return c.startSession(raw)
}

// SignUp creates the identity. The returned user has HasSession set only
// when the backend auto-confirmed the account and opened a session.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*ports.RemoteUser, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   map[string]any{"email": email, "password": password, "data": metadata},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(raw, "access_token").Exists() {
		return c.startSession(raw)
	}

	userJSON := raw
	if u := gjson.GetBytes(raw, "user"); u.IsObject() {
		userJSON = []byte(u.Raw)
	}
	var u ports.RemoteUser
	if err := json.Unmarshal(userJSON, &u); err != nil {
		return nil, &ports.RemoteError{Kind: ports.RemoteGeneric, Message: "decode sign-up response", Err: err}
	}
	return &u, nil
}

func (c *Client) startSession(raw []byte) (*ports.RemoteUser, error) {
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, &ports.RemoteError{Kind: ports.RemoteGeneric, Message: "decode token response", Err: err}
	}
	s, err := c.newSession(tr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = s
	c.persistLocked()
	user := s.userCopy()
	c.mu.Unlock()

	c.log.Info().Str("user_id", user.ID).Msg("remote session started")
	c.events.Set(ports.RemoteAuthEvent{Event: ports.AuthEventSignedIn, User: s.userCopy()})
	return user, nil
}

// SignInWithOAuth builds the provider authorisation URL. No request is
// made; the session arrives later through the redirect.
func (c *Client) SignInWithOAuth(_ context.Context, provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", &ports.RemoteError{Kind: ports.RemoteValidation, Message: "provider is required"}
	}
	params := url.Values{}
	params.Set("provider", provider)
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + params.Encode(), nil
}

// SignOut drops the local session first, then revokes it remotely. The
// session is gone even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.persistLocked()
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	c.events.Set(ports.RemoteAuthEvent{Event: ports.AuthEventSignedOut})

	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  s.AccessToken,
		auth:   true,
	})
	var re *ports.RemoteError
	if errors.As(err, &re) && re.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

// CurrentUser asks the auth service who the held token belongs to. A token
// the server no longer accepts ends the session.
func (c *Client) CurrentUser(ctx context.Context) (*ports.RemoteUser, error) {
	token, err := c.accessToken(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user", token: token, auth: true})
	if err != nil {
		var re *ports.RemoteError
		if errors.As(err, &re) && (re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden) {
			c.endSession(token)
			return nil, nil
		}
		return nil, err
	}

	var u ports.RemoteUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &ports.RemoteError{Kind: ports.RemoteGeneric, Message: "decode user", Err: err}
	}
	u.HasSession = true

	c.mu.Lock()
	if c.session != nil && c.session.AccessToken == token {
		c.session.User = u
		c.persistLocked()
	}
	c.mu.Unlock()
	return &u, nil
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	params := url.Values{}
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/recover",
		query:  params.Encode(),
		body:   map[string]string{"email": email},
		auth:   true,
	})
	return err
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/resend",
		body:   map[string]string{"type": "signup", "email": email},
		auth:   true,
	})
	return err
}

// OnAuthStateChange replays the held session as INITIAL_SESSION, then
// forwards every change.
func (c *Client) OnAuthStateChange(fn func(ports.RemoteAuthEvent)) func() {
	first := true
	return c.events.Subscribe(func(ev ports.RemoteAuthEvent) {
		if first {
			first = false
			ev.Event = ports.AuthEventInitialSession
		}
		fn(ev)
	})
}

// accessToken returns the bearer for the held session, refreshing it when
// it is about to expire. It returns "" when no session is held. The refresh
// request runs without c.mu so other callers are never queued behind it.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return "", nil
	}
	snap := *c.session
	c.mu.Unlock()

	if !snap.expiring(c.now()) {
		return snap.AccessToken, nil
	}
	token, ev, err := c.refresh(ctx, snap)
	if ev != nil {
		c.events.Set(*ev)
	}
	return token, err
}

// refresh exchanges the refresh token of old. The result only replaces the
// held session if nothing else replaced or ended it meanwhile. A rejected
// refresh token ends the session and the caller continues anonymously.
func (c *Client) refresh(ctx context.Context, old session) (string, *ports.RemoteAuthEvent, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  "grant_type=refresh_token",
		body:   map[string]string{"refresh_token": old.RefreshToken},
		auth:   true,
	})
	if err != nil {
		if ports.KindOf(err) != ports.RemoteValidation {
			return "", nil, fmt.Errorf("refresh session: %w", err)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.holdsLocked(old.AccessToken) {
			return c.currentTokenLocked(), nil, nil
		}
		c.log.Info().Err(err).Msg("refresh token rejected, session ended")
		c.session = nil
		c.persistLocked()
		return "", &ports.RemoteAuthEvent{Event: ports.AuthEventSignedOut}, nil
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", nil, &ports.RemoteError{Kind: ports.RemoteGeneric, Message: "decode refresh response", Err: err}
	}
	if tr.User == nil {
		tr.User = &old.User
	}
	next, err := c.newSession(tr)
	if err != nil {
		return "", nil, err
	}
	if next.RefreshToken == "" {
		next.RefreshToken = old.RefreshToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.holdsLocked(old.AccessToken) {
		return c.currentTokenLocked(), nil, nil
	}
	c.session = next
	c.persistLocked()
	c.log.Debug().Str("user_id", next.User.ID).Msg("remote session refreshed")
	return next.AccessToken, &ports.RemoteAuthEvent{Event: ports.AuthEventTokenRefreshed, User: next.userCopy()}, nil
}

func (c *Client) holdsLocked(token string) bool {
	return c.session != nil && c.session.AccessToken == token
}

func (c *Client) currentTokenLocked() string {
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// endSession drops the session if it still carries token.
func (c *Client) endSession(token string) {
	c.mu.Lock()
	if c.session == nil || c.session.AccessToken != token {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.persistLocked()
	c.mu.Unlock()
	c.log.Info().Msg("remote session no longer valid")
	c.events.Set(ports.RemoteAuthEvent{Event: ports.AuthEventSignedOut})
}

// persistLocked mirrors c.session into the session store. Caller holds c.mu.
func (c *Client) persistLocked() {
	if c.sessions == nil {
		return
	}
	var err error
	if c.session == nil {
		err = c.sessions.Delete(c.sessionKey)
	} else {
		var raw []byte
		if raw, err = json.Marshal(c.session); err == nil {
			err = c.sessions.Set(c.sessionKey, raw)
		}
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("persist remote session failed")
	}
}

func (c *Client) restoreSession() *session {
	if c.sessions == nil {
		return nil
	}
	raw, ok, err := c.sessions.Get(c.sessionKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("load remote session failed")
		return nil
	}
	if !ok {
		return nil
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil || s.AccessToken == "" {
		c.log.Warn().Err(err).Msg("discarding unreadable remote session")
		return nil
	}
	return &s
}
