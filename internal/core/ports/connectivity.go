package ports

import (
	"context"
	"time"
)

// NetworkSignal reports host link state. It is a hint for when to probe,
// never proof that the backend is usable.
type NetworkSignal interface {
	Connected() bool
	Subscribe(fn func(up bool)) (unsubscribe func())
}

// Reachability is the shared view of backend health read by both façades.
type Reachability interface {
	IsReachable() bool
	// EnsureReachable re-probes when the cached state is unreachable.
	EnsureReachable(ctx context.Context) bool
	MarkUnreachable(reason error)
	// Subscribe replays the current state immediately, then reports changes.
	Subscribe(fn func(reachable bool)) (unsubscribe func())
}

// ConnectivityMonitor adds explicit probing on top of Reachability.
type ConnectivityMonitor interface {
	Reachability
	Probe(ctx context.Context) bool
}

// OfflinePreference is the user's explicit "stay offline" override.
type OfflinePreference interface {
	OfflineModePreference() bool
	SetOfflineModePreference(offline bool) error
}

// Recorder receives operational signals for metrics.
type Recorder interface {
	ProbeCompleted(reachable bool, elapsed time.Duration)
	ReachabilityChanged(reachable bool)
	Fallback(operation, kind string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) ProbeCompleted(bool, time.Duration) {}
func (NopRecorder) ReachabilityChanged(bool)           {}
func (NopRecorder) Fallback(string, string)            {}
