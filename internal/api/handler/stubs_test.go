package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// stubAuthService embeds the interface so unset methods panic loudly.
type stubAuthService struct {
	ports.AuthService

	signInFn    func(ctx context.Context, email, password string) (*domain.Account, error)
	signUpFn    func(ctx context.Context, in domain.SignUp) (*domain.Account, error)
	providerFn  func(ctx context.Context, provider string) (*domain.FederatedSignIn, error)
	signOutFn   func(ctx context.Context) error
	updateFn    func(ctx context.Context, patch domain.AccountPatch) (*domain.Account, error)
	resetFn     func(ctx context.Context, email string) error
	resendFn    func(ctx context.Context, email string) error
	subscribeFn func(fn func(*domain.Account)) func()
}

func (s *stubAuthService) SignInWithEmail(ctx context.Context, email, password string) (*domain.Account, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignUpWithEmail(ctx context.Context, in domain.SignUp) (*domain.Account, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignInWithProvider(ctx context.Context, provider string) (*domain.FederatedSignIn, error) {
	return s.providerFn(ctx, provider)
}

func (s *stubAuthService) SignOut(ctx context.Context) error {
	return s.signOutFn(ctx)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, patch domain.AccountPatch) (*domain.Account, error) {
	return s.updateFn(ctx, patch)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, email string) error {
	return s.resetFn(ctx, email)
}

func (s *stubAuthService) ResendConfirmation(ctx context.Context, email string) error {
	return s.resendFn(ctx, email)
}

func (s *stubAuthService) OnAuthStateChange(fn func(*domain.Account)) func() {
	return s.subscribeFn(fn)
}

type stubDataService struct {
	ports.DataService

	listListingsFn      func(ctx context.Context) ([]domain.Listing, error)
	listByOwnerFn       func(ctx context.Context, ownerID string) ([]domain.Listing, error)
	getListingFn        func(ctx context.Context, id string) (*domain.Listing, error)
	createListingFn     func(ctx context.Context, in domain.NewListing) (*domain.Listing, error)
	listingStatusFn     func(ctx context.Context, id string, status domain.ListingStatus) (*domain.Listing, error)
	listAccountsFn      func(ctx context.Context) ([]domain.Account, error)
	getAccountFn        func(ctx context.Context, id string) (*domain.Account, error)
	listOffersFn        func(ctx context.Context, listingID string) ([]domain.Offer, error)
	createOfferFn       func(ctx context.Context, in domain.NewOffer) (*domain.Offer, error)
	offerStatusFn       func(ctx context.Context, id string, status domain.OfferStatus) (*domain.Offer, error)
	listEndorsementsFn  func(ctx context.Context, subjectID string) ([]domain.Endorsement, error)
	createEndorsementFn func(ctx context.Context, in domain.NewEndorsement) (*domain.Endorsement, error)
	resetFn             func(ctx context.Context) error
}

func (s *stubDataService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return s.listListingsFn(ctx)
}

func (s *stubDataService) ListListingsByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return s.listByOwnerFn(ctx, ownerID)
}

func (s *stubDataService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.getListingFn(ctx, id)
}

func (s *stubDataService) CreateListing(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	return s.createListingFn(ctx, in)
}

func (s *stubDataService) UpdateListingStatus(ctx context.Context, id string, status domain.ListingStatus) (*domain.Listing, error) {
	return s.listingStatusFn(ctx, id, status)
}

func (s *stubDataService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.listAccountsFn(ctx)
}

func (s *stubDataService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getAccountFn(ctx, id)
}

func (s *stubDataService) ListOffersByListing(ctx context.Context, listingID string) ([]domain.Offer, error) {
	return s.listOffersFn(ctx, listingID)
}

func (s *stubDataService) CreateOffer(ctx context.Context, in domain.NewOffer) (*domain.Offer, error) {
	return s.createOfferFn(ctx, in)
}

func (s *stubDataService) UpdateOfferStatus(ctx context.Context, id string, status domain.OfferStatus) (*domain.Offer, error) {
	return s.offerStatusFn(ctx, id, status)
}

func (s *stubDataService) ListEndorsementsBySubject(ctx context.Context, subjectID string) ([]domain.Endorsement, error) {
	return s.listEndorsementsFn(ctx, subjectID)
}

func (s *stubDataService) CreateEndorsement(ctx context.Context, in domain.NewEndorsement) (*domain.Endorsement, error) {
	return s.createEndorsementFn(ctx, in)
}

func (s *stubDataService) ResetLocalData(ctx context.Context) error {
	return s.resetFn(ctx)
}

// stubMonitor delivers subscriptions synchronously.
type stubMonitor struct {
	mu        sync.Mutex
	reachable bool
	probeTo   *bool
	probes    int
	listeners []func(bool)
}

func (m *stubMonitor) IsReachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

func (m *stubMonitor) EnsureReachable(context.Context) bool { return m.IsReachable() }

func (m *stubMonitor) MarkUnreachable(error) { m.set(false) }

func (m *stubMonitor) Probe(context.Context) bool {
	m.mu.Lock()
	m.probes++
	to := m.probeTo
	m.mu.Unlock()
	if to != nil {
		m.set(*to)
	}
	return m.IsReachable()
}

func (m *stubMonitor) Subscribe(fn func(bool)) func() {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	cur := m.reachable
	m.mu.Unlock()
	fn(cur)
	return func() {}
}

func (m *stubMonitor) set(v bool) {
	m.mu.Lock()
	changed := m.reachable != v
	m.reachable = v
	ls := append([]func(bool){}, m.listeners...)
	m.mu.Unlock()
	if changed {
		for _, fn := range ls {
			fn(v)
		}
	}
}

type stubPref struct {
	offline bool
	err     error
}

func (p *stubPref) OfflineModePreference() bool { return p.offline }

func (p *stubPref) SetOfflineModePreference(offline bool) error {
	if p.err != nil {
		return p.err
	}
	p.offline = offline
	return nil
}

type stubStore struct{ err error }

func (s stubStore) Ping() error { return s.err }

// newTestEcho mirrors the router's validator and error handler without the
// rest of the stack.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// serve runs h and renders any returned error the way the router would.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func signedIn(c echo.Context, acc *domain.Account) {
	c.Set(CtxAccount, acc)
	c.Set(CtxAccountID, acc.ID)
	c.Set(CtxRole, string(acc.Role))
}

var (
	client     = &domain.Account{ID: "user-1", DisplayName: "Ana Cliente", Role: domain.RoleClient}
	freelancer = &domain.Account{ID: "user-2", DisplayName: "Bruno Dev", Role: domain.RoleFreelancer}
)
