package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/api/handler"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// Session resolves the signed-in account through the hybrid auth service
// and injects it into context. Requests without a session get 401.
func Session(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acc, err := auth.CurrentAccount(c.Request().Context())
			if err != nil {
				return err
			}
			if acc == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}

			c.Set(handler.CtxAccount, acc)
			c.Set(handler.CtxAccountID, acc.ID)
			c.Set(handler.CtxRole, string(acc.Role))

			return next(c)
		}
	}
}
