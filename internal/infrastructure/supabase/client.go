// Package supabase is the remote backend: PostgREST for rows and GoTrue for
// identity, spoken over plain HTTP.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/broadcast"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultSessionKey = "pulseconnect_remote_session"
)

// Config holds client configuration.
type Config struct {
	URL     string
	AnonKey string
	// Timeout bounds every request. Zero means 10s.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Sessions persists the signed-in session across restarts. Optional.
	Sessions   ports.KeyValueStore
	SessionKey string
}

// Client implements ports.RemoteBackend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sessions   ports.KeyValueStore
	sessionKey string
	log        zerolog.Logger
	now        func() time.Time

	// mu guards session and serialises refreshes.
	mu      sync.Mutex
	session *session
	events  *broadcast.Broadcaster[ports.RemoteAuthEvent]
}

var _ ports.RemoteBackend = (*Client)(nil)

// New builds a Client and restores a persisted session, if any.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("supabase: anon key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	key := cfg.SessionKey
	if key == "" {
		key = defaultSessionKey
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.AnonKey,
		httpClient: httpClient,
		sessions:   cfg.Sessions,
		sessionKey: key,
		log:        log,
		now:        time.Now,
	}
	c.session = c.restoreSession()
	var user *ports.RemoteUser
	if c.session != nil {
		user = c.session.userCopy()
	}
	c.events = broadcast.New[ports.RemoteAuthEvent]("remote-auth",
		ports.RemoteAuthEvent{Event: ports.AuthEventInitialSession, User: user}, nil, log)
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// request is one HTTP call against the backend.
type request struct {
	method  string
	path    string
	query   string
	body    any
	headers map[string]string
	// token overrides the bearer; empty means the anon key.
	token string
	auth  bool
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	url := c.baseURL + r.path
	if r.query != "" {
		url += "?" + r.query
	}
	req, err := http.NewRequestWithContext(ctx, r.method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	bearer := r.token
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ports.RemoteError{Kind: ports.RemoteTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ports.RemoteError{Kind: ports.RemoteTransport, Status: resp.StatusCode, Message: "read response", Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classify(resp.StatusCode, raw, r.auth)
	}
	return raw, nil
}
