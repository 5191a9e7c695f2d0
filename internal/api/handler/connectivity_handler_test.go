package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func decodeConnectivity(t *testing.T, body []byte) connectivityResponse {
	t.Helper()
	var resp connectivityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestConnectivityHandler_Status(t *testing.T) {
	e := newTestEcho()
	mon := &stubMonitor{reachable: true}
	h := NewConnectivityHandler(mon, &stubPref{offline: true})

	c, rec := newJSONContext(e, http.MethodGet, "/v1/connectivity", "")
	serve(e, c, h.Status)

	resp := decodeConnectivity(t, rec.Body.Bytes())
	if !resp.Reachable || !resp.OfflineMode || resp.Online {
		t.Fatalf("forced offline must not report online: %+v", resp)
	}
	if mon.probes != 0 {
		t.Fatalf("status must not probe")
	}
}

func TestConnectivityHandler_Probe(t *testing.T) {
	e := newTestEcho()
	down := false
	mon := &stubMonitor{reachable: true, probeTo: &down}
	h := NewConnectivityHandler(mon, &stubPref{})

	c, rec := newJSONContext(e, http.MethodPost, "/v1/connectivity/probe", "")
	serve(e, c, h.Probe)

	resp := decodeConnectivity(t, rec.Body.Bytes())
	if rec.Code != http.StatusOK || resp.Reachable || resp.Online {
		t.Fatalf("expected unreachable after probe, got %d %+v", rec.Code, resp)
	}
	if mon.probes != 1 {
		t.Fatalf("expected one probe, got %d", mon.probes)
	}
}

func TestConnectivityHandler_SetOfflineMode(t *testing.T) {
	e := newTestEcho()
	pref := &stubPref{}
	h := NewConnectivityHandler(&stubMonitor{reachable: true}, pref)

	c, rec := newJSONContext(e, http.MethodPut, "/v1/connectivity/offline-mode", `{"offline":true}`)
	serve(e, c, h.SetOfflineMode)
	if rec.Code != http.StatusOK || !pref.offline {
		t.Fatalf("expected offline mode on, got %d %v", rec.Code, pref.offline)
	}

	c, rec = newJSONContext(e, http.MethodPut, "/v1/connectivity/offline-mode", `{"offline":false}`)
	serve(e, c, h.SetOfflineMode)
	resp := decodeConnectivity(t, rec.Body.Bytes())
	if pref.offline || !resp.Online {
		t.Fatalf("expected offline mode off, got %+v", resp)
	}
}

func TestConnectivityHandler_SetOfflineMode_RequiresFlag(t *testing.T) {
	e := newTestEcho()
	h := NewConnectivityHandler(&stubMonitor{}, &stubPref{})

	c, rec := newJSONContext(e, http.MethodPut, "/v1/connectivity/offline-mode", `{}`)
	serve(e, c, h.SetOfflineMode)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestConnectivityHandler_SetOfflineMode_StoreFailure(t *testing.T) {
	e := newTestEcho()
	boom := errors.New("disk full")
	h := NewConnectivityHandler(&stubMonitor{}, &stubPref{err: boom})

	c, _ := newJSONContext(e, http.MethodPut, "/v1/connectivity/offline-mode", `{"offline":true}`)
	if err := h.SetOfflineMode(c); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestMaintenanceHandler_ClearLocalData(t *testing.T) {
	e := newTestEcho()
	var order []string
	h := NewMaintenanceHandler(
		&stubAuthService{signOutFn: func(context.Context) error { order = append(order, "sign-out"); return nil }},
		&stubDataService{resetFn: func(context.Context) error { order = append(order, "reset"); return nil }},
	)

	c, rec := newJSONContext(e, http.MethodPost, "/v1/maintenance/clear-local-data", "")
	serve(e, c, h.ClearLocalData)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(order) != 2 || order[0] != "sign-out" || order[1] != "reset" {
		t.Fatalf("unexpected call order %v", order)
	}
}

func TestHealthHandlers(t *testing.T) {
	e := newTestEcho()

	c, rec := newJSONContext(e, http.MethodGet, "/health", "")
	serve(e, c, NewHealthHandler().Liveness)
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}

	cases := []struct {
		name       string
		reachable  bool
		storeErr   error
		wantCode   int
		wantStatus string
	}{
		{"all up", true, nil, http.StatusOK, "ok"},
		{"backend down", false, nil, http.StatusOK, "degraded"},
		{"store broken", true, errors.New("permission denied"), http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthDependenciesHandler(&stubMonitor{reachable: tc.reachable}, stubStore{err: tc.storeErr})
			c, rec := newJSONContext(e, http.MethodGet, "/health/ready", "")
			serve(e, c, h.Readiness)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tc.wantStatus {
				t.Fatalf("expected status %q, got %q", tc.wantStatus, resp.Status)
			}
		})
	}
}
