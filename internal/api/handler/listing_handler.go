package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// ListingHandler serves listings and the offers made against them.
type ListingHandler struct {
	service ports.DataService
}

func NewListingHandler(service ports.DataService) *ListingHandler {
	return &ListingHandler{service: service}
}

// List returns listings newest first, optionally for one owner.
//
// @Summary      List listings
// @Tags         listings
// @Produce      json
// @Param        owner_id  query     string  false  "Owner account id"
// @Success      200       {object}  listingsResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		items []domain.Listing
		err   error
	)
	if owner := c.QueryParam("owner_id"); owner != "" {
		items, err = h.service.ListListingsByOwner(ctx, owner)
	} else {
		items, err = h.service.ListListings(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingsResponse{Items: items, Count: len(items)})
}

// Get returns one listing.
//
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  domain.Listing
// @Failure      404  {object}  errorResponse
// @Router       /v1/listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	l, err := h.service.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// Create posts a listing owned by the signed-in client.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      createListingRequest  true  "Listing"
// @Success      201   {object}  domain.Listing
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	l, err := h.service.CreateListing(c.Request().Context(), domain.NewListing{
		OwnerID:     acc.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Skills:      req.Skills,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/listings/"+l.ID)
	return c.JSON(http.StatusCreated, l)
}

// UpdateStatus moves a listing through its lifecycle. Only the owner may
// do so.
//
// @Summary      Change listing status
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Listing id"
// @Param        body  body      listingStatusRequest  true  "New status"
// @Success      200   {object}  domain.Listing
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/listings/{id}/status [patch]
func (h *ListingHandler) UpdateStatus(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req listingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	current, err := h.service.GetListing(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if current.OwnerID != acc.ID {
		return domain.NewUserError(domain.CodeForbidden, "only the owner can change this listing")
	}

	l, err := h.service.UpdateListingStatus(ctx, current.ID, domain.ListingStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// ListOffers returns the offers made against a listing.
//
// @Summary      List offers for a listing
// @Tags         offers
// @Produce      json
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  offersResponse
// @Router       /v1/listings/{id}/offers [get]
func (h *ListingHandler) ListOffers(c echo.Context) error {
	items, err := h.service.ListOffersByListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offersResponse{Items: items, Count: len(items)})
}

// CreateOffer submits the signed-in freelancer's offer.
//
// @Summary      Make an offer
// @Tags         offers
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Listing id"
// @Param        body  body      createOfferRequest  true  "Offer"
// @Success      201   {object}  domain.Offer
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/listings/{id}/offers [post]
func (h *ListingHandler) CreateOffer(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createOfferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	o, err := h.service.CreateOffer(c.Request().Context(), domain.NewOffer{
		ListingID:    c.Param("id"),
		AccountID:    acc.ID,
		Price:        req.Price,
		Message:      req.Message,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

// UpdateOfferStatus accepts, rejects or withdraws an offer.
//
// @Summary      Change offer status
// @Tags         offers
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Offer id"
// @Param        body  body      offerStatusRequest  true  "New status"
// @Success      200   {object}  domain.Offer
// @Failure      404   {object}  errorResponse
// @Router       /v1/offers/{id}/status [patch]
func (h *ListingHandler) UpdateOfferStatus(c echo.Context) error {
	if _, err := ctxAccount(c); err != nil {
		return err
	}
	var req offerStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	o, err := h.service.UpdateOfferStatus(c.Request().Context(), c.Param("id"), domain.OfferStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}
