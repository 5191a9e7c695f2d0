package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// MaintenanceHandler exposes destructive housekeeping for the local store.
type MaintenanceHandler struct {
	auth ports.AuthService
	data ports.DataService
}

func NewMaintenanceHandler(auth ports.AuthService, data ports.DataService) *MaintenanceHandler {
	return &MaintenanceHandler{auth: auth, data: data}
}

// ClearLocalData signs out and wipes every locally stored entity. The seed
// data comes back on next use.
//
// @Summary      Clear local data
// @Tags         maintenance
// @Success      204
// @Failure      500  {object}  errorResponse
// @Router       /v1/maintenance/clear-local-data [post]
func (h *MaintenanceHandler) ClearLocalData(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.auth.SignOut(ctx); err != nil {
		return err
	}
	if err := h.data.ResetLocalData(ctx); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
