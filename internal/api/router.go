package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/pulseconnect/hybrid-client/docs" // swagger docs

	"github.com/pulseconnect/hybrid-client/internal/api/handler"
	"github.com/pulseconnect/hybrid-client/internal/api/middleware"
	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// Deps is everything the HTTP surface needs from the core.
type Deps struct {
	Auth       ports.AuthService
	Data       ports.DataService
	Monitor    ports.ConnectivityMonitor
	Preference ports.OfflinePreference
	Store      handler.StorePinger
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Health probes, metrics and docs (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Monitor, d.Store)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: is the local store usable?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Auth)
	listingHandler := handler.NewListingHandler(d.Data)
	accountHandler := handler.NewAccountHandler(d.Data)
	connectivityHandler := handler.NewConnectivityHandler(d.Monitor, d.Preference)
	eventsHandler := handler.NewEventsHandler(d.Monitor, d.Auth, d.Log)
	maintenanceHandler := handler.NewMaintenanceHandler(d.Auth, d.Data)

	session := middleware.Session(d.Auth)
	clientsOnly := middleware.RBAC(domain.RoleClient)
	freelancersOnly := middleware.RBAC(domain.RoleFreelancer)

	v1 := e.Group("/v1")

	// --- Connectivity ---
	v1.GET("/connectivity", connectivityHandler.Status)
	v1.POST("/connectivity/probe", connectivityHandler.Probe)
	v1.PUT("/connectivity/offline-mode", connectivityHandler.SetOfflineMode)
	v1.GET("/events", eventsHandler.Stream)

	// --- Auth ---
	v1.POST("/auth/sign-in", authHandler.SignIn)
	v1.POST("/auth/sign-up", authHandler.SignUp)
	v1.POST("/auth/federated", authHandler.Federated)
	v1.POST("/auth/sign-out", authHandler.SignOut)
	v1.POST("/auth/password-reset", authHandler.PasswordReset)
	v1.POST("/auth/resend-confirmation", authHandler.ResendConfirmation)
	v1.GET("/me", authHandler.Me, session)
	v1.PATCH("/me", authHandler.UpdateMe, session)

	// --- Accounts ---
	v1.GET("/accounts", accountHandler.List)
	v1.GET("/accounts/:id", accountHandler.Get)
	v1.GET("/accounts/:id/endorsements", accountHandler.ListEndorsements)
	v1.POST("/accounts/:id/endorsements", accountHandler.CreateEndorsement, session)

	// --- Listings and offers ---
	v1.GET("/listings", listingHandler.List)
	v1.POST("/listings", listingHandler.Create, session, clientsOnly)
	v1.GET("/listings/:id", listingHandler.Get)
	v1.PATCH("/listings/:id/status", listingHandler.UpdateStatus, session, clientsOnly)
	v1.GET("/listings/:id/offers", listingHandler.ListOffers)
	v1.POST("/listings/:id/offers", listingHandler.CreateOffer, session, freelancersOnly)
	v1.PATCH("/offers/:id/status", listingHandler.UpdateOfferStatus, session)

	// --- Maintenance ---
	v1.POST("/maintenance/clear-local-data", maintenanceHandler.ClearLocalData)

	return e
}
