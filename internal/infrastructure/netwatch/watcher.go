// Package netwatch reports whether the host has a usable network link by
// polling its interfaces.
package netwatch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/pulseconnect/hybrid-client/internal/core/broadcast"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const DefaultInterval = 5 * time.Second

type lister func(ctx context.Context) ([]psnet.InterfaceStat, error)

// Watcher implements ports.NetworkSignal.
type Watcher struct {
	interval time.Duration
	list     lister
	log      zerolog.Logger
	state    *broadcast.Broadcaster[bool]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.NetworkSignal = (*Watcher)(nil)

// New reads the link state once so Connected is meaningful before Start.
func New(interval time.Duration, log zerolog.Logger) *Watcher {
	return newWatcher(interval, listInterfaces, log)
}

func newWatcher(interval time.Duration, list lister, log zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{interval: interval, list: list, log: log}
	up, err := w.poll(context.Background())
	if err != nil {
		// Assume a link; the backend probe decides reachability anyway.
		up = true
	}
	w.state = broadcast.New("link", up, func(a, b bool) bool { return a == b }, log)
	return w
}

func listInterfaces(ctx context.Context) ([]psnet.InterfaceStat, error) {
	return psnet.InterfacesWithContext(ctx)
}

func (w *Watcher) Connected() bool { return w.state.Current() }

// Subscribe replays the current link state, then reports changes.
func (w *Watcher) Subscribe(fn func(up bool)) func() { return w.state.Subscribe(fn) }

// Start polls until Stop or ctx is done. Calling Start twice is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

// Stop ends polling and waits for the poller to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			up, err := w.poll(ctx)
			if err != nil {
				w.log.Debug().Err(err).Msg("list interfaces failed")
				continue
			}
			if w.state.Set(up) {
				w.log.Info().Bool("up", up).Msg("network link changed")
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()
	ifaces, err := w.list(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(ifaces, usable), nil
}

// usable reports an interface that is up, not loopback and addressed.
func usable(i psnet.InterfaceStat) bool {
	return slices.Contains(i.Flags, "up") &&
		!slices.Contains(i.Flags, "loopback") &&
		len(i.Addrs) > 0
}
