package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignIn authenticates with email and password.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.authService.SignInWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: acc})
}

// SignUp creates an account. The response carries no account when the
// remote backend still waits for email confirmation.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "New account"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.authService.SignUpWithEmail(c.Request().Context(), domain.SignUp{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, accountResponse{Account: acc})
}

// Federated starts a provider sign-in.
//
// @Summary      Federated sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      federatedRequest  false  "Provider"
// @Success      200   {object}  domain.FederatedSignIn
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/federated [post]
func (h *AuthHandler) Federated(c echo.Context) error {
	var req federatedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SignInWithProvider(c.Request().Context(), req.Provider)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// SignOut ends the current session. Repeating it is harmless.
//
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Router       /v1/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.authService.SignOut(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PasswordReset sends a reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/password-reset [post]
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "password reset email sent"})
}

// ResendConfirmation re-sends the sign-up confirmation.
//
// @Summary      Resend sign-up confirmation
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/resend-confirmation [post]
func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "confirmation email sent"})
}

// Me returns the signed-in account.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: acc})
}

// UpdateMe patches the signed-in account's profile.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/me [patch]
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	if _, err := ctxAccount(c); err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch := req.patch()
	if patch.Empty() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "nothing to update")
	}

	acc, err := h.authService.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: acc})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
