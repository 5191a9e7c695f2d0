package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	var r Recorder

	before := testutil.ToFloat64(ProbesTotal.WithLabelValues("unreachable"))
	r.ProbeCompleted(false, 120*time.Millisecond)
	if got := testutil.ToFloat64(ProbesTotal.WithLabelValues("unreachable")); got != before+1 {
		t.Errorf("expected unreachable probes to grow by one, got %v -> %v", before, got)
	}

	r.ReachabilityChanged(false)
	if got := testutil.ToFloat64(BackendReachable); got != 0 {
		t.Errorf("expected gauge 0, got %v", got)
	}
	r.ReachabilityChanged(true)
	if got := testutil.ToFloat64(BackendReachable); got != 1 {
		t.Errorf("expected gauge 1, got %v", got)
	}

	r.Fallback("data.list_listings", "structural")
	if got := testutil.ToFloat64(FallbacksTotal.WithLabelValues("data.list_listings", "structural")); got < 1 {
		t.Errorf("expected a recorded fallback, got %v", got)
	}
}
