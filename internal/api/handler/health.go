package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// HealthHandler handles GET /health: liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// StorePinger round-trips a marker through the local store.
type StorePinger interface {
	Ping() error
}

// HealthDependenciesHandler handles GET /health/ready: readiness probe.
// The local store must work; a down backend only degrades the answer,
// since every operation can still be served offline.
type HealthDependenciesHandler struct {
	reach ports.Reachability
	store StorePinger
}

func NewHealthDependenciesHandler(reach ports.Reachability, store StorePinger) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{reach: reach, store: store}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	deps := make(map[string]dependencyStatus, 2)
	status := "ok"
	httpStatus := http.StatusOK

	// --- Local store round trip ---
	if err := h.store.Ping(); err != nil {
		deps["local_store"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	} else {
		deps["local_store"] = dependencyStatus{Status: "ok"}
	}

	// --- Remote backend (cached, no probe) ---
	if h.reach.IsReachable() {
		deps["backend"] = dependencyStatus{Status: "ok"}
	} else {
		deps["backend"] = dependencyStatus{Status: "unreachable"}
		if httpStatus == http.StatusOK {
			status = "degraded"
		}
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
