package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// AccountHandler serves public profiles and their endorsements.
type AccountHandler struct {
	service ports.DataService
}

func NewAccountHandler(service ports.DataService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List returns every known profile.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  accountsResponse
// @Router       /v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	items, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountsResponse{Items: items, Count: len(items)})
}

// Get returns one profile.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	acc, err := h.service.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// ListEndorsements returns the endorsements an account has received.
//
// @Summary      List endorsements
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  endorsementsResponse
// @Router       /v1/accounts/{id}/endorsements [get]
func (h *AccountHandler) ListEndorsements(c echo.Context) error {
	items, err := h.service.ListEndorsementsBySubject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, endorsementsResponse{Items: items, Count: len(items)})
}

// CreateEndorsement rates an account as the signed-in user.
//
// @Summary      Endorse an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Account id"
// @Param        body  body      createEndorsementRequest  true  "Endorsement"
// @Success      201   {object}  domain.Endorsement
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/accounts/{id}/endorsements [post]
func (h *AccountHandler) CreateEndorsement(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createEndorsementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	e, err := h.service.CreateEndorsement(c.Request().Context(), domain.NewEndorsement{
		SubjectID: c.Param("id"),
		AuthorID:  acc.ID,
		ListingID: req.ListingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}
