// Package connectivity owns the process-wide "is the backend usable" state.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pulseconnect/hybrid-client/internal/core/broadcast"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const (
	DefaultProbeTimeout     = 5 * time.Second
	DefaultProbeInterval    = 30 * time.Second
	DefaultRecoveryInterval = 2 * time.Second
)

// ErrProbeTimeout is reported when the backend does not answer in time.
var ErrProbeTimeout = errors.New("connectivity: probe timed out")

// Config tunes probing. Zero values take the defaults above.
type Config struct {
	ProbeTimeout  time.Duration
	ProbeInterval time.Duration
	// RecoveryInterval is the minimum spacing between on-demand probes made
	// by EnsureReachable while the backend is down.
	RecoveryInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	if c.RecoveryInterval <= 0 {
		c.RecoveryInterval = DefaultRecoveryInterval
	}
	return c
}

// Monitor probes the backend and broadcasts reachability transitions.
// Reachability starts optimistic (true).
type Monitor struct {
	pinger   ports.Pinger
	signal   ports.NetworkSignal
	cfg      Config
	recorder ports.Recorder
	log      zerolog.Logger

	state    *broadcast.Broadcaster[bool]
	inFlight atomic.Bool
	recovery *rate.Limiter

	mu        sync.Mutex
	scheduler *cron.Cron
	linkUnsub func()
	linkSeen  bool
	linkUp    bool
}

// NewMonitor wires a Monitor. signal and rec may be nil. Nothing runs until
// Start.
func NewMonitor(pinger ports.Pinger, signal ports.NetworkSignal, cfg Config, rec ports.Recorder, log zerolog.Logger) *Monitor {
	cfg = cfg.withDefaults()
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Monitor{
		pinger:   pinger,
		signal:   signal,
		cfg:      cfg,
		recorder: rec,
		log:      log,
		state:    broadcast.New("connectivity", true, func(a, b bool) bool { return a == b }, log),
		recovery: rate.NewLimiter(rate.Every(cfg.RecoveryInterval), 1),
	}
}

// IsReachable returns the cached state without probing.
func (m *Monitor) IsReachable() bool {
	return m.state.Current()
}

// Subscribe replays the current state, then reports transitions only.
func (m *Monitor) Subscribe(fn func(reachable bool)) func() {
	return m.state.Subscribe(fn)
}

// Probe makes one time-bounded round trip to the backend. While another
// probe is in flight it returns the cached state without a request.
func (m *Monitor) Probe(ctx context.Context) bool {
	if !m.inFlight.CompareAndSwap(false, true) {
		return m.state.Current()
	}
	defer m.inFlight.Store(false)

	start := time.Now()
	err := m.ping(ctx)
	reachable := err == nil
	m.recorder.ProbeCompleted(reachable, time.Since(start))

	if err != nil {
		m.logFailure("probe", err)
	}
	m.set(reachable, err)
	return reachable
}

// ping races the backend round trip against the probe timeout. The request
// goroutine is abandoned on timeout and finishes on its own.
func (m *Monitor) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.pinger.Ping(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrProbeTimeout, m.cfg.ProbeTimeout)
		}
		return ctx.Err()
	}
}

// MarkUnreachable forces the state to unreachable after a failed call.
func (m *Monitor) MarkUnreachable(reason error) {
	m.set(false, reason)
}

// EnsureReachable returns the cached state when it is reachable; otherwise
// it re-probes, at most once per RecoveryInterval.
func (m *Monitor) EnsureReachable(ctx context.Context) bool {
	if m.state.Current() {
		return true
	}
	if !m.recovery.Allow() {
		return false
	}
	m.log.Debug().Msg("backend marked unreachable, re-probing before call")
	return m.Probe(ctx)
}

func (m *Monitor) set(reachable bool, reason error) {
	if !m.state.Set(reachable) {
		return
	}
	m.recorder.ReachabilityChanged(reachable)
	if reachable {
		m.log.Info().Bool("reachable", true).Msg("backend reachable, leaving fallback mode")
		return
	}
	m.log.Warn().Err(reason).Bool("reachable", false).Msg("backend unreachable, switching to fallback mode")
}

func (m *Monitor) logFailure(source string, err error) {
	kind := ports.KindOf(err)
	if errors.Is(err, ErrProbeTimeout) {
		kind = ports.RemoteTransport
	}
	ev := m.log.Debug()
	if kind == ports.RemoteStructural {
		ev = m.log.Error()
	}
	ev.Err(err).Str("source", source).Str("kind", kind.String()).Msg("backend probe failed")
}

// Start runs the initial probe, schedules periodic probes and listens for
// link transitions. Calling Start twice is a no-op.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.scheduler != nil {
		m.mu.Unlock()
		return nil
	}
	scheduler := cron.New()
	spec := fmt.Sprintf("@every %s", m.cfg.ProbeInterval)
	if _, err := scheduler.AddFunc(spec, func() { m.Probe(context.Background()) }); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("connectivity: schedule probe: %w", err)
	}
	m.scheduler = scheduler
	m.mu.Unlock()

	m.Probe(ctx)
	scheduler.Start()

	if m.signal != nil {
		unsub := m.signal.Subscribe(m.onLink)
		m.mu.Lock()
		m.linkUnsub = unsub
		m.mu.Unlock()
	}

	m.log.Info().
		Dur("interval", m.cfg.ProbeInterval).
		Dur("timeout", m.cfg.ProbeTimeout).
		Bool("reachable", m.IsReachable()).
		Msg("connectivity monitor started")
	return nil
}

// onLink probes on every link transition. The first callback is the
// signal's replay of its current state and only records it.
func (m *Monitor) onLink(up bool) {
	m.mu.Lock()
	changed := m.linkSeen && m.linkUp != up
	m.linkSeen = true
	m.linkUp = up
	m.mu.Unlock()

	if !changed {
		return
	}
	m.log.Info().Bool("link_up", up).Msg("network link changed, probing backend")
	m.Probe(context.Background())
}

// Stop halts periodic probing, waiting for a running probe, and detaches
// from the link signal.
func (m *Monitor) Stop() {
	m.mu.Lock()
	scheduler := m.scheduler
	unsub := m.linkUnsub
	m.scheduler = nil
	m.linkUnsub = nil
	m.linkSeen = false
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
		m.log.Info().Msg("connectivity monitor stopped")
	}
}
