package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// ConnectivityHandler exposes the shared reachability state and the user's
// offline override.
type ConnectivityHandler struct {
	monitor ports.ConnectivityMonitor
	pref    ports.OfflinePreference
}

func NewConnectivityHandler(monitor ports.ConnectivityMonitor, pref ports.OfflinePreference) *ConnectivityHandler {
	return &ConnectivityHandler{monitor: monitor, pref: pref}
}

// Status reports the cached state without probing.
//
// @Summary      Connectivity status
// @Tags         connectivity
// @Produce      json
// @Success      200  {object}  connectivityResponse
// @Router       /v1/connectivity [get]
func (h *ConnectivityHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot(h.monitor.IsReachable()))
}

// Probe forces one round trip to the backend.
//
// @Summary      Probe the backend now
// @Tags         connectivity
// @Produce      json
// @Success      200  {object}  connectivityResponse
// @Router       /v1/connectivity/probe [post]
func (h *ConnectivityHandler) Probe(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot(h.monitor.Probe(c.Request().Context())))
}

// SetOfflineMode turns the "stay offline" override on or off.
//
// @Summary      Set offline mode
// @Tags         connectivity
// @Accept       json
// @Produce      json
// @Param        body  body      offlineModeRequest  true  "Offline flag"
// @Success      200   {object}  connectivityResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/connectivity/offline-mode [put]
func (h *ConnectivityHandler) SetOfflineMode(c echo.Context) error {
	var req offlineModeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.pref.SetOfflineModePreference(*req.Offline); err != nil {
		return fmt.Errorf("set offline mode: %w", err)
	}
	return c.JSON(http.StatusOK, h.snapshot(h.monitor.IsReachable()))
}

func (h *ConnectivityHandler) snapshot(reachable bool) connectivityResponse {
	offline := h.pref.OfflineModePreference()
	return connectivityResponse{
		Reachable:   reachable,
		OfflineMode: offline,
		Online:      reachable && !offline,
	}
}
