package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

// Context keys set by the Session middleware.
const (
	CtxAccount   = "account"
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// ctxAccount extracts the account injected by the Session middleware and
// performs a fast-fail check before any service call. A missing account
// means the route was mounted without the middleware, so it is rejected
// with 401 rather than served anonymously.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	acc, _ := c.Get(CtxAccount).(*domain.Account)
	if acc == nil || acc.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return acc, nil
}
