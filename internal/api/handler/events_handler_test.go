package handler

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

// readEvent returns the next "event:"/"data:" pair, skipping heartbeats.
func readEvent(t *testing.T, r *bufio.Reader) (name, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestEventsHandler_Stream(t *testing.T) {
	mon := &stubMonitor{reachable: true}
	listeners := make(chan func(*domain.Account), 1)
	auth := &stubAuthService{
		subscribeFn: func(fn func(*domain.Account)) func() {
			listeners <- fn
			fn(nil)
			return func() {}
		},
	}

	e := newTestEcho()
	e.GET("/v1/events", NewEventsHandler(mon, auth, zerolog.Nop()).Stream)
	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	r := bufio.NewReader(resp.Body)

	seen := map[string]string{}
	for len(seen) < 2 {
		name, data := readEvent(t, r)
		seen[name] = data
	}
	if seen[EventConnectivityChanged] != `{"reachable":true}` {
		t.Fatalf("unexpected connectivity replay %q", seen[EventConnectivityChanged])
	}
	if seen[EventAuthChanged] != `{"account":null}` {
		t.Fatalf("unexpected auth replay %q", seen[EventAuthChanged])
	}

	mon.set(false)
	name, data := readEvent(t, r)
	if name != EventConnectivityChanged || data != `{"reachable":false}` {
		t.Fatalf("expected connectivity drop, got %s %s", name, data)
	}

	authListener := <-listeners
	authListener(client)
	name, data = readEvent(t, r)
	if name != EventAuthChanged || !strings.Contains(data, `"id":"user-1"`) {
		t.Fatalf("expected sign-in event, got %s %s", name, data)
	}
}

func TestEventsHandler_SlowClientDropsEvents(t *testing.T) {
	mon := &stubMonitor{reachable: true}
	auth := &stubAuthService{
		subscribeFn: func(fn func(*domain.Account)) func() { return func() {} },
	}
	h := NewEventsHandler(mon, auth, zerolog.Nop())
	h.heartbeat = time.Hour

	e := newTestEcho()
	e.GET("/v1/events", h.Stream)
	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	// Flapping far beyond the buffer must never block the publisher.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < eventBuffer*20; i++ {
			mon.set(i%2 == 0)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("publisher blocked on a slow client")
	}
}
